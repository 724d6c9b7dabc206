package repositories

import (
	"errors"
	"time"

	"vibblo-api/models"
)

// Sentinel errors shared by every Store implementation so callers never
// depend on driver-specific error values.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository owns user rows and the friendship edge rows hanging off
// them. AddFriend and RemoveFriend are single-direction set operations;
// the relationship service is responsible for calling them for both
// directions inside one transaction.
type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	Update(user *models.User) error

	AddFriend(userID, friendID string) error
	RemoveFriend(userID, friendID string) error
	AreFriends(userID, otherID string) (bool, error)
	ListFriends(userID string) ([]models.User, error)
}

// FriendRequestRepository owns pending request rows. Delete operations
// scoped to a receiver or sender return the number of rows removed so
// the caller can distinguish "deleted" from "not yours / not there"
// without a prior read.
type FriendRequestRepository interface {
	Create(request *models.FriendRequest) error
	FindPending(senderID, receiverID string) (*models.FriendRequest, error)
	FindForReceiver(id uint, receiverID string) (*models.FriendRequest, error)
	DeleteForReceiver(id uint, receiverID string) (int64, error)
	DeleteForSender(id uint, senderID string) (int64, error)
	DeleteBetween(userID, otherID string) error
	ListSent(senderID string) ([]models.FriendRequest, error)
	ListReceived(receiverID string) ([]models.FriendRequest, error)
}

type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListForUser(userID string, offset, limit int) ([]models.Notification, int64, error)
	MarkRead(id, userID string) error
	MarkAllRead(userID string) (int64, error)
	Delete(id, userID string) error
	CountForUser(userID string) (int64, error)
	CountUnread(userID string) (int64, error)
	DeleteReadBefore(cutoff time.Time) (int64, error)
}

// Store bundles the repositories behind a single transactional boundary.
// Transaction runs fn against a Store bound to one atomic unit of work:
// every write made through that Store commits together or not at all.
// Returning an error from fn rolls the whole unit back and the same
// error is returned to the caller.
type Store interface {
	Users() UserRepository
	FriendRequests() FriendRequestRepository
	Notifications() NotificationRepository
	Transaction(fn func(Store) error) error
}
