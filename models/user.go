package models

import (
	"time"
)

const (
	DefaultProfilePicture = "https://img.freepik.com/free-psd/3d-illustration-human-avatar-profile_23-2150671142.jpg"
	DefaultCoverImage     = "https://ih1.redbubble.net/cover.4093136.2400x600.jpg"
)

type User struct {
	ID             string     `json:"id" gorm:"primaryKey;size:191"`
	Username       string     `json:"username" gorm:"uniqueIndex;not null;size:30"`
	FullName       string     `json:"full_name" gorm:"not null;size:100"`
	Email          string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password       string     `json:"-" gorm:"not null;size:255"`
	EmailVerified  bool       `json:"email_verified" gorm:"default:false"`
	ProfilePicture string     `json:"profile_picture" gorm:"size:500"`
	CoverImage     string     `json:"cover_image" gorm:"size:500"`
	Bio            string     `json:"bio" gorm:"size:100"`
	Location       string     `json:"location" gorm:"size:30"`
	DOB            *time.Time `json:"dob"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Friendship is one direction of the symmetric friend edge. The
// relationship service always writes both directions inside the same
// transaction, so row (A,B) exists exactly when row (B,A) does and
// reads never need to check direction.
type Friendship struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   string `json:"user_id" gorm:"not null;size:191;uniqueIndex:idx_friendships_user_friend"`
	FriendID string `json:"friend_id" gorm:"not null;size:191;uniqueIndex:idx_friendships_user_friend"`

	CreatedAt time.Time `json:"created_at"`

	User   User `json:"-" gorm:"foreignKey:UserID"`
	Friend User `json:"-" gorm:"foreignKey:FriendID"`
}

// UserProfile is the public projection used in friend lists, request
// lists and notification payloads.
type UserProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	CoverImage     string `json:"cover_image"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:             u.ID,
		Username:       u.Username,
		FullName:       u.FullName,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		CoverImage:     u.CoverImage,
	}
}
