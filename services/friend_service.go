package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"vibblo-api/models"
	"vibblo-api/repositories"
)

// FriendService is the relationship engine: the only writer of
// friendship edges and friend-request rows. Each state transition is an
// atomic unit of work; notifications are emitted only after the unit
// commits and never fail the operation that triggered them.
type FriendService struct {
	store    repositories.Store
	notifier *NotificationService
	log      logrus.FieldLogger
}

func NewFriendService(store repositories.Store, notifier *NotificationService, log logrus.FieldLogger) *FriendService {
	return &FriendService{
		store:    store,
		notifier: notifier,
		log:      log,
	}
}

// SendFriendRequest creates a pending request from sender to receiver.
//
// A request is refused with ErrConflict when the pair is already
// friends, when the same-direction request is already pending, and also
// when a reverse-direction request is pending: the receiver should
// accept the request they already have instead of creating a crossing
// pair. The unique (sender, receiver) index backs the pending check, so
// a racing duplicate send loses with ErrConflict rather than creating a
// second row.
func (s *FriendService) SendFriendRequest(senderID, receiverID string) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, fmt.Errorf("%w: cannot send a friend request to yourself", ErrInvalidOperation)
	}

	sender, err := s.store.Users().FindByID(senderID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if _, err := s.store.Users().FindByID(receiverID); err != nil {
		return nil, translateStoreError(err)
	}

	friends, err := s.store.Users().AreFriends(senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if friends {
		return nil, fmt.Errorf("%w: already friends with this user", ErrConflict)
	}

	if _, err := s.store.FriendRequests().FindPending(senderID, receiverID); err == nil {
		return nil, fmt.Errorf("%w: friend request already sent", ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	if _, err := s.store.FriendRequests().FindPending(receiverID, senderID); err == nil {
		return nil, fmt.Errorf("%w: this user has already sent you a friend request", ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	request := &models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
	}
	if err := s.store.FriendRequests().Create(request); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("%w: friend request already sent", ErrConflict)
		}
		return nil, err
	}

	s.notifier.FriendRequestReceived(sender, receiverID)

	return request, nil
}

// AcceptFriendRequest turns a pending request into a friendship. Inside
// one transaction it deletes the request, writes both directions of the
// edge and sweeps any request left between the two users in the other
// direction, so a stray reverse-direction request cannot survive into
// the friended state. The acceptance notification goes out only after
// the commit.
func (s *FriendService) AcceptFriendRequest(userID string, requestID uint) error {
	var request *models.FriendRequest
	var accepter *models.User

	err := s.store.Transaction(func(tx repositories.Store) error {
		found, err := tx.FriendRequests().FindForReceiver(requestID, userID)
		if err != nil {
			return translateStoreError(err)
		}
		request = found

		// The delete is the authoritative claim on the request. Even if
		// the read above served a stale row, a concurrent accept that
		// already resolved the request leaves zero rows here, so the
		// second caller loses with not found instead of committing a
		// duplicate acceptance.
		deleted, err := tx.FriendRequests().DeleteForReceiver(requestID, userID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return fmt.Errorf("%w: friend request not found", ErrNotFound)
		}

		accepter, err = tx.Users().FindByID(userID)
		if err != nil {
			return translateStoreError(err)
		}

		if err := tx.Users().AddFriend(userID, request.SenderID); err != nil {
			return err
		}
		if err := tx.Users().AddFriend(request.SenderID, userID); err != nil {
			return err
		}

		return tx.FriendRequests().DeleteBetween(userID, request.SenderID)
	})
	if err != nil {
		err = wrapTransactionError(err)
		if errors.Is(err, ErrTransactionFailed) {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id":    userID,
				"request_id": requestID,
			}).Error("accept friend request rolled back")
		}
		return err
	}

	s.notifier.FriendRequestAccepted(accepter, request.SenderID)

	return nil
}

// RejectFriendRequest deletes a pending request addressed to userID.
func (s *FriendService) RejectFriendRequest(userID string, requestID uint) error {
	deleted, err := s.store.FriendRequests().DeleteForReceiver(requestID, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("%w: friend request not found", ErrNotFound)
	}
	return nil
}

// CancelSentRequest deletes a pending request that userID sent. A
// request that was already actioned by the receiver reports the same
// ErrNotFound; the caller cannot tell the difference and does not need
// to.
func (s *FriendService) CancelSentRequest(userID string, requestID uint) error {
	deleted, err := s.store.FriendRequests().DeleteForSender(requestID, userID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return fmt.Errorf("%w: friend request not found or already cancelled", ErrNotFound)
	}
	return nil
}

// Unfriend removes the symmetric edge between two users and sweeps any
// request rows left between them. Both removals are idempotent, so a
// repeated unfriend is a harmless no-op rather than an error.
func (s *FriendService) Unfriend(userID, friendID string) error {
	if userID == friendID {
		return fmt.Errorf("%w: cannot unfriend yourself", ErrInvalidOperation)
	}

	err := s.store.Transaction(func(tx repositories.Store) error {
		if _, err := tx.Users().FindByID(userID); err != nil {
			return translateStoreError(err)
		}
		if _, err := tx.Users().FindByID(friendID); err != nil {
			return translateStoreError(err)
		}

		if err := tx.Users().RemoveFriend(userID, friendID); err != nil {
			return err
		}
		if err := tx.Users().RemoveFriend(friendID, userID); err != nil {
			return err
		}

		// None should remain once friended, but a stray row from an
		// earlier inconsistency is swept here.
		return tx.FriendRequests().DeleteBetween(userID, friendID)
	})
	if err != nil {
		err = wrapTransactionError(err)
		if errors.Is(err, ErrTransactionFailed) {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id":   userID,
				"friend_id": friendID,
			}).Error("unfriend rolled back")
		}
		return err
	}
	return nil
}

// GetSentRequests lists pending requests sent by userID with the
// receiver profile attached.
func (s *FriendService) GetSentRequests(userID string) ([]models.FriendRequest, error) {
	return s.store.FriendRequests().ListSent(userID)
}

// GetReceivedRequests lists pending requests addressed to userID with
// the sender profile attached.
func (s *FriendService) GetReceivedRequests(userID string) ([]models.FriendRequest, error) {
	return s.store.FriendRequests().ListReceived(userID)
}

// GetFriends lists userID's friends.
func (s *FriendService) GetFriends(userID string) ([]models.User, error) {
	if _, err := s.store.Users().FindByID(userID); err != nil {
		return nil, translateStoreError(err)
	}
	return s.store.Users().ListFriends(userID)
}

func translateStoreError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// wrapTransactionError keeps domain errors as-is and tags everything
// else as a failed commit, which callers may safely retry.
func wrapTransactionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidOperation):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
}
