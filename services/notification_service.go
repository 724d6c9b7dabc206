package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"vibblo-api/models"
	"vibblo-api/repositories"
)

// NotificationService appends user-facing event records. Emission is
// fire-and-forget relative to the state change that triggered it: a
// failed insert is logged and swallowed so the parent operation's
// outcome never depends on notification delivery.
type NotificationService struct {
	store repositories.Store
	log   logrus.FieldLogger
}

func NewNotificationService(store repositories.Store, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{store: store, log: log}
}

// Notify records a notification from sender to receiverID.
func (s *NotificationService) Notify(sender *models.User, receiverID, message, navigateLink string) {
	notification := &models.Notification{
		ID:             uuid.New().String(),
		SenderUserID:   sender.ID,
		ReceiverUserID: receiverID,
		Message:        message,
		NavigateLink:   navigateLink,
		IsRead:         false,
	}

	if err := s.store.Notifications().Create(notification); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"sender_user_id":   sender.ID,
			"receiver_user_id": receiverID,
		}).Error("failed to create notification")
	}
}

// FriendRequestReceived notifies the receiver of a new friend request,
// linking back to the sender's profile.
func (s *NotificationService) FriendRequestReceived(sender *models.User, receiverID string) {
	s.Notify(sender, receiverID,
		fmt.Sprintf("%s sent you a friend request", sender.FullName),
		fmt.Sprintf("/profile/%s", sender.ID))
}

// FriendRequestAccepted notifies the original sender that accepter took
// the request, linking back to the accepter's profile.
func (s *NotificationService) FriendRequestAccepted(accepter *models.User, senderID string) {
	s.Notify(accepter, senderID,
		fmt.Sprintf("%s accepted your friend request", accepter.FullName),
		fmt.Sprintf("/profile/%s", accepter.ID))
}
