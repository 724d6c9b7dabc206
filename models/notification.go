package models

import (
	"fmt"
	"time"
)

type Notification struct {
	ID             string    `json:"id" gorm:"primaryKey;size:191"`
	SenderUserID   string    `json:"sender_user_id" gorm:"not null;size:191;index"`
	ReceiverUserID string    `json:"receiver_user_id" gorm:"not null;size:191;index"`
	Message        string    `json:"message" gorm:"not null;size:255"`
	NavigateLink   string    `json:"navigate_link" gorm:"not null;size:255;default:'/'"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	SenderUser   User `json:"-" gorm:"foreignKey:SenderUserID"`
	ReceiverUser User `json:"-" gorm:"foreignKey:ReceiverUserID"`
}

// NotificationResponse represents the API response for notifications
type NotificationResponse struct {
	ID           string      `json:"id"`
	SenderUser   UserProfile `json:"sender_user"`
	Message      string      `json:"message"`
	NavigateLink string      `json:"navigate_link"`
	IsRead       bool        `json:"is_read"`
	CreatedAt    time.Time   `json:"created_at"`
	TimeAgo      string      `json:"time_ago"`
}

// NotificationStats represents notification statistics
type NotificationStats struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}

// PaginatedNotifications represents paginated notification response
type PaginatedNotifications struct {
	Notifications []NotificationResponse `json:"notifications"`
	Page          int                    `json:"page"`
	Limit         int                    `json:"limit"`
	Total         int64                  `json:"total"`
	HasMore       bool                   `json:"has_more"`
	TotalPages    int                    `json:"total_pages"`
}

// GetTimeAgo returns a human-readable time difference
func (n *Notification) GetTimeAgo() string {
	now := time.Now()
	diff := now.Sub(n.CreatedAt)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / (24 * 7))
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / (24 * 30))
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// ToResponse converts Notification to NotificationResponse
func (n *Notification) ToResponse() NotificationResponse {
	return NotificationResponse{
		ID:           n.ID,
		SenderUser:   n.SenderUser.ToProfile(),
		Message:      n.Message,
		NavigateLink: n.NavigateLink,
		IsRead:       n.IsRead,
		CreatedAt:    n.CreatedAt,
		TimeAgo:      n.GetTimeAgo(),
	}
}
