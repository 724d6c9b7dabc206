package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vibblo-api/models"
)

// GormStore is the production Store backed by a MySQL database. The
// database must be opened with TranslateError enabled so uniqueness
// violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Users() UserRepository {
	return &gormUserRepository{db: s.db}
}

func (s *GormStore) FriendRequests() FriendRequestRepository {
	return &gormFriendRequestRepository{db: s.db}
}

func (s *GormStore) Notifications() NotificationRepository {
	return &gormNotificationRepository{db: s.db}
}

// Transaction opens a database transaction and rebinds the repositories
// to it, so every store call made through the handle passed to fn is
// part of the same unit of work. Commit and rollback follow gorm's
// contract: rollback on error or panic, commit otherwise.
func (s *GormStore) Transaction(fn func(Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

type gormUserRepository struct {
	db *gorm.DB
}

func (r *gormUserRepository) Create(user *models.User) error {
	return translateError(r.db.Create(user).Error)
}

func (r *gormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) Update(user *models.User) error {
	return translateError(r.db.Save(user).Error)
}

// AddFriend inserts one direction of the friendship edge. The unique
// pair index plus ON CONFLICT DO NOTHING makes repeated adds no-ops, so
// a racing double-accept cannot produce duplicate rows.
func (r *gormUserRepository) AddFriend(userID, friendID string) error {
	friendship := models.Friendship{UserID: userID, FriendID: friendID}
	return translateError(r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&friendship).Error)
}

func (r *gormUserRepository) RemoveFriend(userID, friendID string) error {
	return translateError(r.db.Where("user_id = ? AND friend_id = ?", userID, friendID).
		Delete(&models.Friendship{}).Error)
}

func (r *gormUserRepository) AreFriends(userID, otherID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *gormUserRepository) ListFriends(userID string) ([]models.User, error) {
	var friends []models.User
	err := r.db.
		Joins("JOIN friendships ON friendships.friend_id = users.id").
		Where("friendships.user_id = ?", userID).
		Order("users.username").
		Find(&friends).Error
	if err != nil {
		return nil, translateError(err)
	}
	return friends, nil
}

type gormFriendRequestRepository struct {
	db *gorm.DB
}

func (r *gormFriendRequestRepository) Create(request *models.FriendRequest) error {
	return translateError(r.db.Create(request).Error)
}

func (r *gormFriendRequestRepository) FindPending(senderID, receiverID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).
		First(&request).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

// FindForReceiver reads with a row lock. Inside a transaction this
// serializes concurrent accepts of the same request: the loser blocks
// until the winner commits, then reads current data and finds the row
// gone instead of a stale snapshot.
func (r *gormFriendRequestRepository) FindForReceiver(id uint, receiverID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND receiver_id = ?", id, receiverID).
		First(&request).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &request, nil
}

func (r *gormFriendRequestRepository) DeleteForReceiver(id uint, receiverID string) (int64, error) {
	res := r.db.Where("id = ? AND receiver_id = ?", id, receiverID).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *gormFriendRequestRepository) DeleteForSender(id uint, senderID string) (int64, error) {
	res := r.db.Where("id = ? AND sender_id = ?", id, senderID).
		Delete(&models.FriendRequest{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *gormFriendRequestRepository) DeleteBetween(userID, otherID string) error {
	return translateError(r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Delete(&models.FriendRequest{}).Error)
}

func (r *gormFriendRequestRepository) ListSent(senderID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.Preload("Receiver").
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

func (r *gormFriendRequestRepository) ListReceived(receiverID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.Preload("Sender").
		Where("receiver_id = ?", receiverID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, translateError(err)
	}
	return requests, nil
}

type gormNotificationRepository struct {
	db *gorm.DB
}

func (r *gormNotificationRepository) Create(notification *models.Notification) error {
	return translateError(r.db.Create(notification).Error)
}

func (r *gormNotificationRepository) ListForUser(userID string, offset, limit int) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.Model(&models.Notification{}).
		Where("receiver_user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var notifications []models.Notification
	err := r.db.Preload("SenderUser").
		Where("receiver_user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, translateError(err)
	}
	return notifications, total, nil
}

func (r *gormNotificationRepository) MarkRead(id, userID string) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND receiver_user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormNotificationRepository) MarkAllRead(userID string) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("receiver_user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, translateError(res.Error)
}

func (r *gormNotificationRepository) Delete(id, userID string) error {
	res := r.db.Where("id = ? AND receiver_user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormNotificationRepository) CountForUser(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("receiver_user_id = ?", userID).
		Count(&count).Error
	return count, translateError(err)
}

func (r *gormNotificationRepository) CountUnread(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("receiver_user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translateError(err)
}

func (r *gormNotificationRepository) DeleteReadBefore(cutoff time.Time) (int64, error) {
	res := r.db.Where("is_read = ? AND created_at < ?", true, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, translateError(res.Error)
}
