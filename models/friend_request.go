package models

import "time"

// FriendRequest is a pending, directional request from Sender to
// Receiver. There is no status column: accepting, rejecting or
// cancelling a request deletes the row, so every stored request is
// pending by definition. The composite unique index guarantees at most
// one request per ordered (sender, receiver) pair.
type FriendRequest struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   string    `json:"sender_id" gorm:"not null;size:191;uniqueIndex:idx_friend_requests_sender_receiver"`
	ReceiverID string    `json:"receiver_id" gorm:"not null;size:191;uniqueIndex:idx_friend_requests_sender_receiver"`
	CreatedAt  time.Time `json:"created_at"`

	Sender   User `json:"-" gorm:"foreignKey:SenderID"`
	Receiver User `json:"-" gorm:"foreignKey:ReceiverID"`
}

// FriendRequestResponse projects a request for the sent/received list
// endpoints. Profile carries the counterpart: the receiver on a sent
// list, the sender on a received list.
type FriendRequestResponse struct {
	ID        uint        `json:"id"`
	SenderID  string      `json:"sender_id"`
	Profile   UserProfile `json:"profile"`
	CreatedAt time.Time   `json:"created_at"`
}

func (fr *FriendRequest) ToSentResponse() FriendRequestResponse {
	return FriendRequestResponse{
		ID:        fr.ID,
		SenderID:  fr.SenderID,
		Profile:   fr.Receiver.ToProfile(),
		CreatedAt: fr.CreatedAt,
	}
}

func (fr *FriendRequest) ToReceivedResponse() FriendRequestResponse {
	return FriendRequestResponse{
		ID:        fr.ID,
		SenderID:  fr.SenderID,
		Profile:   fr.Sender.ToProfile(),
		CreatedAt: fr.CreatedAt,
	}
}
