package jobs

import (
	"time"

	"github.com/sirupsen/logrus"

	"vibblo-api/repositories"
)

// NotificationCleanupJob periodically purges read notifications older
// than the retention window. Unread notifications are never touched.
type NotificationCleanupJob struct {
	store     repositories.Store
	retention time.Duration
	log       logrus.FieldLogger
	ticker    *time.Ticker
	done      chan bool
}

func NewNotificationCleanupJob(store repositories.Store, interval, retention time.Duration, log logrus.FieldLogger) *NotificationCleanupJob {
	return &NotificationCleanupJob{
		store:     store,
		retention: retention,
		log:       log,
		ticker:    time.NewTicker(interval),
		done:      make(chan bool),
	}
}

// Start begins the cleanup job
func (j *NotificationCleanupJob) Start() {
	j.log.Info("notification cleanup job started")

	go func() {
		// Run immediately on start
		j.cleanup()

		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				j.log.Info("notification cleanup job stopped")
				return
			}
		}
	}()
}

// Stop halts the cleanup job
func (j *NotificationCleanupJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *NotificationCleanupJob) cleanup() {
	cutoff := time.Now().Add(-j.retention)

	removed, err := j.store.Notifications().DeleteReadBefore(cutoff)
	if err != nil {
		j.log.WithError(err).Error("notification cleanup failed")
		return
	}
	if removed > 0 {
		j.log.WithField("removed", removed).Info("purged read notifications")
	}
}
