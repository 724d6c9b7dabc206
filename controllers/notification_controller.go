package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vibblo-api/models"
	"vibblo-api/repositories"
	"vibblo-api/utils"
)

type NotificationController struct {
	store repositories.Store
}

func NewNotificationController(store repositories.Store) *NotificationController {
	return &NotificationController{store: store}
}

// GetNotifications gets paginated notifications for the current user
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	notifications, total, err := nc.store.Notifications().ListForUser(userID, offset, limit)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch notifications")
		return
	}

	responses := make([]models.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, notifications[i].ToResponse())
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))

	c.JSON(http.StatusOK, models.PaginatedNotifications{
		Notifications: responses,
		Page:          page,
		Limit:         limit,
		Total:         total,
		HasMore:       page < totalPages,
		TotalPages:    totalPages,
	})
}

// GetNotificationStats gets notification statistics (unread count, etc.)
func (nc *NotificationController) GetNotificationStats(c *gin.Context) {
	userID := c.GetString("user_id")

	unreadCount, err := nc.store.Notifications().CountUnread(userID)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch notification stats")
		return
	}

	total, err := nc.store.Notifications().CountForUser(userID)
	if err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to fetch notification stats")
		return
	}

	c.JSON(http.StatusOK, models.NotificationStats{
		UnreadCount: int(unreadCount),
		TotalCount:  int(total),
	})
}

// MarkAsRead marks a notification as read
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	if err := nc.store.Notifications().MarkRead(notificationID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.SendError(c, http.StatusNotFound, "Notification not found")
		} else {
			utils.SendError(c, http.StatusInternalServerError, "Failed to mark notification as read")
		}
		return
	}

	utils.SendSuccess(c, "Notification marked as read", nil)
}

// MarkAllAsRead marks all notifications as read for the current user
func (nc *NotificationController) MarkAllAsRead(c *gin.Context) {
	userID := c.GetString("user_id")

	if _, err := nc.store.Notifications().MarkAllRead(userID); err != nil {
		utils.SendError(c, http.StatusInternalServerError, "Failed to mark notifications as read")
		return
	}

	utils.SendSuccess(c, "All notifications marked as read", nil)
}

// DeleteNotification deletes a notification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	if err := nc.store.Notifications().Delete(notificationID, userID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			utils.SendError(c, http.StatusNotFound, "Notification not found")
		} else {
			utils.SendError(c, http.StatusInternalServerError, "Failed to delete notification")
		}
		return
	}

	utils.SendSuccess(c, "Notification deleted successfully", nil)
}
