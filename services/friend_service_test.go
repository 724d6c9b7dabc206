package services

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibblo-api/models"
	"vibblo-api/repositories"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(t *testing.T) (*FriendService, *repositories.MemoryStore) {
	t.Helper()
	store := repositories.NewMemoryStore()
	log := quietLogger()
	return NewFriendService(store, NewNotificationService(store, log), log), store
}

func addUser(t *testing.T, store repositories.Store, id, username, fullName string) {
	t.Helper()
	err := store.Users().Create(&models.User{
		ID:       id,
		Username: username,
		FullName: fullName,
		Email:    username + "@example.com",
		Password: "hashed",
	})
	require.NoError(t, err)
}

func assertSymmetricFriends(t *testing.T, store repositories.Store, a, b string, want bool) {
	t.Helper()
	ab, err := store.Users().AreFriends(a, b)
	require.NoError(t, err)
	ba, err := store.Users().AreFriends(b, a)
	require.NoError(t, err)
	assert.Equal(t, want, ab, "friendship %s->%s", a, b)
	assert.Equal(t, want, ba, "friendship %s->%s", b, a)
}

func notificationsFor(t *testing.T, store repositories.Store, userID string) []models.Notification {
	t.Helper()
	notifications, _, err := store.Notifications().ListForUser(userID, 0, 50)
	require.NoError(t, err)
	return notifications
}

func TestSendFriendRequest(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	require.NotNil(t, request)
	assert.Equal(t, "alice", request.SenderID)
	assert.Equal(t, "bob", request.ReceiverID)
	assert.NotZero(t, request.ID)

	received, err := svc.GetReceivedRequests("bob")
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "alice", received[0].SenderID)
	assert.Equal(t, "Alice Doe", received[0].Sender.FullName)

	sent, err := svc.GetSentRequests("alice")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "bob", sent[0].ReceiverID)
	assert.Equal(t, "Bob Ray", sent[0].Receiver.FullName)

	notifications := notificationsFor(t, store, "bob")
	require.Len(t, notifications, 1)
	assert.Equal(t, "Alice Doe sent you a friend request", notifications[0].Message)
	assert.Equal(t, "/profile/alice", notifications[0].NavigateLink)
	assert.False(t, notifications[0].IsRead)
}

func TestSendFriendRequestToSelf(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")

	_, err := svc.SendFriendRequest("alice", "alice")
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestSendFriendRequestUnknownReceiver(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")

	_, err := svc.SendFriendRequest("alice", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.SendFriendRequest("ghost", "alice")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSendFriendRequestTwice(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	_, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	_, err = svc.SendFriendRequest("alice", "bob")
	assert.ErrorIs(t, err, ErrConflict)

	sent, err := svc.GetSentRequests("alice")
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestSendFriendRequestWithReversePending(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	_, err := svc.SendFriendRequest("bob", "alice")
	require.NoError(t, err)

	// Crossing requests are refused: alice already has bob's request
	// waiting and should accept that one instead.
	_, err = svc.SendFriendRequest("alice", "bob")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSendFriendRequestWhenAlreadyFriends(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest("bob", request.ID))

	_, err = svc.SendFriendRequest("alice", "bob")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.SendFriendRequest("bob", "alice")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAcceptFriendRequest(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	require.NoError(t, svc.AcceptFriendRequest("bob", request.ID))

	assertSymmetricFriends(t, store, "alice", "bob", true)

	sent, err := svc.GetSentRequests("alice")
	require.NoError(t, err)
	assert.Empty(t, sent)
	received, err := svc.GetReceivedRequests("bob")
	require.NoError(t, err)
	assert.Empty(t, received)

	friends, err := svc.GetFriends("alice")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].ID)

	notifications := notificationsFor(t, store, "alice")
	require.Len(t, notifications, 1)
	assert.Equal(t, "Bob Ray accepted your friend request", notifications[0].Message)
	assert.Equal(t, "/profile/bob", notifications[0].NavigateLink)
}

func TestAcceptFriendRequestNotReceiver(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")
	addUser(t, store, "carol", "carol", "Carol Lim")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	// The sender and a third party both look like "not found"; the
	// existence of someone else's request must not leak.
	assert.ErrorIs(t, svc.AcceptFriendRequest("alice", request.ID), ErrNotFound)
	assert.ErrorIs(t, svc.AcceptFriendRequest("carol", request.ID), ErrNotFound)

	assertSymmetricFriends(t, store, "alice", "bob", false)
}

func TestAcceptFriendRequestPurgesReverseRequest(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	// Create crossing requests directly in the store, simulating the
	// inconsistent state the engine itself refuses to produce.
	forward := &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	require.NoError(t, store.FriendRequests().Create(forward))
	reverse := &models.FriendRequest{SenderID: "bob", ReceiverID: "alice"}
	require.NoError(t, store.FriendRequests().Create(reverse))

	require.NoError(t, svc.AcceptFriendRequest("bob", forward.ID))

	assertSymmetricFriends(t, store, "alice", "bob", true)

	// Both directions must be swept, not just the accepted one.
	for _, userID := range []string{"alice", "bob"} {
		received, err := svc.GetReceivedRequests(userID)
		require.NoError(t, err)
		assert.Empty(t, received, "user %s", userID)
	}
}

func TestRejectFriendRequest(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	require.NoError(t, svc.RejectFriendRequest("bob", request.ID))

	assertSymmetricFriends(t, store, "alice", "bob", false)
	received, err := svc.GetReceivedRequests("bob")
	require.NoError(t, err)
	assert.Empty(t, received)

	// No residual conflict: alice may try again.
	_, err = svc.SendFriendRequest("alice", "bob")
	assert.NoError(t, err)
}

func TestRejectFriendRequestNotReceiver(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.RejectFriendRequest("alice", request.ID), ErrNotFound)

	received, err := svc.GetReceivedRequests("bob")
	require.NoError(t, err)
	assert.Len(t, received, 1)
}

func TestCancelSentRequest(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	require.NoError(t, svc.CancelSentRequest("alice", request.ID))

	received, err := svc.GetReceivedRequests("bob")
	require.NoError(t, err)
	assert.Empty(t, received)

	// The request is gone; bob's reject on the stale id reports the
	// usual not found.
	assert.ErrorIs(t, svc.RejectFriendRequest("bob", request.ID), ErrNotFound)
}

func TestCancelSentRequestNotSender(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.CancelSentRequest("bob", request.ID), ErrNotFound)
}

func TestUnfriend(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)
	require.NoError(t, svc.AcceptFriendRequest("bob", request.ID))

	require.NoError(t, svc.Unfriend("alice", "bob"))

	assertSymmetricFriends(t, store, "alice", "bob", false)
	friends, err := svc.GetFriends("alice")
	require.NoError(t, err)
	assert.Empty(t, friends)
	friends, err = svc.GetFriends("bob")
	require.NoError(t, err)
	assert.Empty(t, friends)

	// Second call is a benign no-op.
	require.NoError(t, svc.Unfriend("alice", "bob"))
	assertSymmetricFriends(t, store, "alice", "bob", false)
}

func TestUnfriendSweepsStrayRequests(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	require.NoError(t, store.Users().AddFriend("alice", "bob"))
	require.NoError(t, store.Users().AddFriend("bob", "alice"))
	stray := &models.FriendRequest{SenderID: "bob", ReceiverID: "alice"}
	require.NoError(t, store.FriendRequests().Create(stray))

	require.NoError(t, svc.Unfriend("alice", "bob"))

	received, err := svc.GetReceivedRequests("alice")
	require.NoError(t, err)
	assert.Empty(t, received)
}

func TestUnfriendUnknownUser(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")

	assert.ErrorIs(t, svc.Unfriend("alice", "ghost"), ErrNotFound)
	assert.ErrorIs(t, svc.Unfriend("ghost", "alice"), ErrNotFound)
	assert.ErrorIs(t, svc.Unfriend("alice", "alice"), ErrInvalidOperation)
}

// failingRequestRepository fails the both-direction cleanup step,
// forcing the accept transaction to abort after the friendship rows
// were already written.
type failingRequestRepository struct {
	repositories.FriendRequestRepository
}

func (failingRequestRepository) DeleteBetween(userID, otherID string) error {
	return errors.New("storage offline")
}

type failingStore struct {
	repositories.Store
}

func (f *failingStore) Transaction(fn func(repositories.Store) error) error {
	return f.Store.Transaction(func(tx repositories.Store) error {
		return fn(&failingStore{Store: tx})
	})
}

func (f *failingStore) FriendRequests() repositories.FriendRequestRepository {
	return failingRequestRepository{f.Store.FriendRequests()}
}

func TestAcceptFriendRequestRollsBackOnFailure(t *testing.T) {
	store := repositories.NewMemoryStore()
	log := quietLogger()
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request := &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	require.NoError(t, store.FriendRequests().Create(request))

	wrapped := &failingStore{Store: store}
	svc := NewFriendService(wrapped, NewNotificationService(store, log), log)

	err := svc.AcceptFriendRequest("bob", request.ID)
	require.ErrorIs(t, err, ErrTransactionFailed)

	// All or nothing: the friendship rows must have been rolled back
	// and the request must still be pending.
	assertSymmetricFriends(t, store, "alice", "bob", false)
	pending, err := store.FriendRequests().FindForReceiver(request.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "alice", pending.SenderID)

	// No acceptance notification escaped the failed unit of work.
	assert.Empty(t, notificationsFor(t, store, "alice"))
}

// staleRequestRepository keeps serving a request row after it was
// deleted, the way a database transaction that started before a
// concurrent accept committed still sees the row in its read snapshot.
type staleRequestRepository struct {
	repositories.FriendRequestRepository
	stale *models.FriendRequest
}

func (r staleRequestRepository) FindForReceiver(id uint, receiverID string) (*models.FriendRequest, error) {
	if r.stale.ID == id && r.stale.ReceiverID == receiverID {
		copied := *r.stale
		return &copied, nil
	}
	return r.FriendRequestRepository.FindForReceiver(id, receiverID)
}

type staleReadStore struct {
	repositories.Store
	stale *models.FriendRequest
}

func (s *staleReadStore) Transaction(fn func(repositories.Store) error) error {
	return s.Store.Transaction(func(tx repositories.Store) error {
		return fn(&staleReadStore{Store: tx, stale: s.stale})
	})
}

func (s *staleReadStore) FriendRequests() repositories.FriendRequestRepository {
	return staleRequestRepository{s.Store.FriendRequests(), s.stale}
}

func TestAcceptFriendRequestStaleReadLoses(t *testing.T) {
	store := repositories.NewMemoryStore()
	log := quietLogger()
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request := &models.FriendRequest{SenderID: "alice", ReceiverID: "bob"}
	require.NoError(t, store.FriendRequests().Create(request))

	stale := *request
	wrapped := &staleReadStore{Store: store, stale: &stale}
	svc := NewFriendService(wrapped, NewNotificationService(store, log), log)

	require.NoError(t, svc.AcceptFriendRequest("bob", request.ID))

	// The replay still reads the request through the stale snapshot,
	// but its delete observes zero rows, so it must lose with not found
	// rather than report a second success.
	assert.ErrorIs(t, svc.AcceptFriendRequest("bob", request.ID), ErrNotFound)

	assertSymmetricFriends(t, store, "alice", "bob", true)
	assert.Len(t, notificationsFor(t, store, "alice"), 1,
		"only the winning accept may notify the sender")
}

func TestConcurrentAcceptSingleWinner(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	request, err := svc.SendFriendRequest("alice", "bob")
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.AcceptFriendRequest("bob", request.ID)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, notFound int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrNotFound):
			notFound++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one accept must win")
	assert.Equal(t, attempts-1, notFound)

	assertSymmetricFriends(t, store, "alice", "bob", true)

	// The winner fired exactly one acceptance notification.
	assert.Len(t, notificationsFor(t, store, "alice"), 1)
}

func TestConcurrentSendSingleRequest(t *testing.T) {
	svc, store := newTestService(t)
	addUser(t, store, "alice", "alice", "Alice Doe")
	addUser(t, store, "bob", "bob", "Bob Ray")

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SendFriendRequest("alice", "bob")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one send must win")

	sent, err := svc.GetSentRequests("alice")
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}
