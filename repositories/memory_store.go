package repositories

import (
	"sort"
	"sync"
	"time"

	"vibblo-api/models"
)

// MemoryStore is an in-memory Store with the same semantics as the
// database-backed one: uniqueness guards, ErrNotFound translation and
// all-or-nothing transactions (implemented as snapshot and restore
// under a store-wide lock). It backs the service and controller tests.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memoryData

	// inTx marks a handle produced by Transaction; its operations run
	// under the lock already held by the transaction.
	inTx bool
}

type memoryData struct {
	users         map[string]*models.User
	friends       map[string]map[string]bool
	requests      map[uint]*models.FriendRequest
	nextRequestID uint
	notifications []*models.Notification
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:         make(map[string]*models.User),
		friends:       make(map[string]map[string]bool),
		requests:      make(map[uint]*models.FriendRequest),
		nextRequestID: 1,
	}
}

func (d *memoryData) clone() *memoryData {
	c := newMemoryData()
	c.nextRequestID = d.nextRequestID
	for id, u := range d.users {
		user := *u
		c.users[id] = &user
	}
	for id, set := range d.friends {
		copied := make(map[string]bool, len(set))
		for friendID := range set {
			copied[friendID] = true
		}
		c.friends[id] = copied
	}
	for id, r := range d.requests {
		request := *r
		c.requests[id] = &request
	}
	c.notifications = make([]*models.Notification, len(d.notifications))
	for i, n := range d.notifications {
		notification := *n
		c.notifications[i] = &notification
	}
	return c
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:   &sync.Mutex{},
		data: newMemoryData(),
	}
}

func (s *MemoryStore) Users() UserRepository {
	return &memoryUserRepository{store: s}
}

func (s *MemoryStore) FriendRequests() FriendRequestRepository {
	return &memoryFriendRequestRepository{store: s}
}

func (s *MemoryStore) Notifications() NotificationRepository {
	return &memoryNotificationRepository{store: s}
}

// Transaction serializes against all other store access, snapshots the
// data and restores the snapshot if fn fails. A nested call joins the
// enclosing unit of work.
func (s *MemoryStore) Transaction(fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

// lock acquires the store lock unless this handle already runs inside a
// transaction. The returned func releases whatever was acquired.
func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memoryUserRepository struct {
	store *MemoryStore
}

func (r *memoryUserRepository) Create(user *models.User) error {
	defer r.store.lock()()
	data := r.store.data

	if _, ok := data.users[user.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range data.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return ErrDuplicate
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	data.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepository) FindByID(id string) (*models.User, error) {
	defer r.store.lock()()
	user, ok := r.store.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepository) FindByEmail(email string) (*models.User, error) {
	defer r.store.lock()()
	for _, user := range r.store.data.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) FindByUsername(username string) (*models.User, error) {
	defer r.store.lock()()
	for _, user := range r.store.data.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryUserRepository) Update(user *models.User) error {
	defer r.store.lock()()
	if _, ok := r.store.data.users[user.ID]; !ok {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.store.data.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepository) AddFriend(userID, friendID string) error {
	defer r.store.lock()()
	data := r.store.data
	if data.friends[userID] == nil {
		data.friends[userID] = make(map[string]bool)
	}
	data.friends[userID][friendID] = true
	return nil
}

func (r *memoryUserRepository) RemoveFriend(userID, friendID string) error {
	defer r.store.lock()()
	delete(r.store.data.friends[userID], friendID)
	return nil
}

func (r *memoryUserRepository) AreFriends(userID, otherID string) (bool, error) {
	defer r.store.lock()()
	return r.store.data.friends[userID][otherID], nil
}

func (r *memoryUserRepository) ListFriends(userID string) ([]models.User, error) {
	defer r.store.lock()()
	data := r.store.data

	ids := make([]string, 0, len(data.friends[userID]))
	for friendID := range data.friends[userID] {
		ids = append(ids, friendID)
	}

	friends := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := data.users[id]; ok {
			friends = append(friends, *user)
		}
	}
	sort.Slice(friends, func(i, j int) bool { return friends[i].Username < friends[j].Username })
	return friends, nil
}

type memoryFriendRequestRepository struct {
	store *MemoryStore
}

func (r *memoryFriendRequestRepository) Create(request *models.FriendRequest) error {
	defer r.store.lock()()
	data := r.store.data

	for _, existing := range data.requests {
		if existing.SenderID == request.SenderID && existing.ReceiverID == request.ReceiverID {
			return ErrDuplicate
		}
	}

	if request.ID == 0 {
		request.ID = data.nextRequestID
		data.nextRequestID++
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now()
	}
	copied := *request
	data.requests[request.ID] = &copied
	return nil
}

func (r *memoryFriendRequestRepository) FindPending(senderID, receiverID string) (*models.FriendRequest, error) {
	defer r.store.lock()()
	for _, request := range r.store.data.requests {
		if request.SenderID == senderID && request.ReceiverID == receiverID {
			copied := *request
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryFriendRequestRepository) FindForReceiver(id uint, receiverID string) (*models.FriendRequest, error) {
	defer r.store.lock()()
	request, ok := r.store.data.requests[id]
	if !ok || request.ReceiverID != receiverID {
		return nil, ErrNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *memoryFriendRequestRepository) DeleteForReceiver(id uint, receiverID string) (int64, error) {
	defer r.store.lock()()
	request, ok := r.store.data.requests[id]
	if !ok || request.ReceiverID != receiverID {
		return 0, nil
	}
	delete(r.store.data.requests, id)
	return 1, nil
}

func (r *memoryFriendRequestRepository) DeleteForSender(id uint, senderID string) (int64, error) {
	defer r.store.lock()()
	request, ok := r.store.data.requests[id]
	if !ok || request.SenderID != senderID {
		return 0, nil
	}
	delete(r.store.data.requests, id)
	return 1, nil
}

func (r *memoryFriendRequestRepository) DeleteBetween(userID, otherID string) error {
	defer r.store.lock()()
	for id, request := range r.store.data.requests {
		sameDirection := request.SenderID == userID && request.ReceiverID == otherID
		reverseDirection := request.SenderID == otherID && request.ReceiverID == userID
		if sameDirection || reverseDirection {
			delete(r.store.data.requests, id)
		}
	}
	return nil
}

func (r *memoryFriendRequestRepository) ListSent(senderID string) ([]models.FriendRequest, error) {
	defer r.store.lock()()
	data := r.store.data

	var requests []models.FriendRequest
	for _, request := range data.requests {
		if request.SenderID != senderID {
			continue
		}
		copied := *request
		if receiver, ok := data.users[request.ReceiverID]; ok {
			copied.Receiver = *receiver
		}
		requests = append(requests, copied)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests, nil
}

func (r *memoryFriendRequestRepository) ListReceived(receiverID string) ([]models.FriendRequest, error) {
	defer r.store.lock()()
	data := r.store.data

	var requests []models.FriendRequest
	for _, request := range data.requests {
		if request.ReceiverID != receiverID {
			continue
		}
		copied := *request
		if sender, ok := data.users[request.SenderID]; ok {
			copied.Sender = *sender
		}
		requests = append(requests, copied)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].CreatedAt.After(requests[j].CreatedAt) })
	return requests, nil
}

type memoryNotificationRepository struct {
	store *MemoryStore
}

func (r *memoryNotificationRepository) Create(notification *models.Notification) error {
	defer r.store.lock()()
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	copied := *notification
	r.store.data.notifications = append(r.store.data.notifications, &copied)
	return nil
}

func (r *memoryNotificationRepository) ListForUser(userID string, offset, limit int) ([]models.Notification, int64, error) {
	defer r.store.lock()()
	data := r.store.data

	var matched []models.Notification
	// Newest first: walk the append-only slice backwards.
	for i := len(data.notifications) - 1; i >= 0; i-- {
		n := data.notifications[i]
		if n.ReceiverUserID != userID {
			continue
		}
		copied := *n
		if sender, ok := data.users[n.SenderUserID]; ok {
			copied.SenderUser = *sender
		}
		matched = append(matched, copied)
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memoryNotificationRepository) MarkRead(id, userID string) error {
	defer r.store.lock()()
	for _, n := range r.store.data.notifications {
		if n.ID == id && n.ReceiverUserID == userID {
			n.IsRead = true
			n.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryNotificationRepository) MarkAllRead(userID string) (int64, error) {
	defer r.store.lock()()
	var updated int64
	for _, n := range r.store.data.notifications {
		if n.ReceiverUserID == userID && !n.IsRead {
			n.IsRead = true
			n.UpdatedAt = time.Now()
			updated++
		}
	}
	return updated, nil
}

func (r *memoryNotificationRepository) Delete(id, userID string) error {
	defer r.store.lock()()
	data := r.store.data
	for i, n := range data.notifications {
		if n.ID == id && n.ReceiverUserID == userID {
			data.notifications = append(data.notifications[:i], data.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *memoryNotificationRepository) CountForUser(userID string) (int64, error) {
	defer r.store.lock()()
	var count int64
	for _, n := range r.store.data.notifications {
		if n.ReceiverUserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memoryNotificationRepository) CountUnread(userID string) (int64, error) {
	defer r.store.lock()()
	var count int64
	for _, n := range r.store.data.notifications {
		if n.ReceiverUserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memoryNotificationRepository) DeleteReadBefore(cutoff time.Time) (int64, error) {
	defer r.store.lock()()
	data := r.store.data

	var kept []*models.Notification
	var removed int64
	for _, n := range data.notifications {
		if n.IsRead && n.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	data.notifications = kept
	return removed, nil
}
