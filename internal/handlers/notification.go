package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/db"
	"github.com/taskhive-dev/taskhive/internal/utils"
	"gorm.io/gorm"
)

type NotificationResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	ProjectID   *uint     `json:"project_id"`
	Read        bool      `json:"read"`
}

// ListNotifications returns the caller's notification history, newest first.
// Only notifications the caller was a recipient of are visible.
func ListNotifications(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var rows []NotificationResponse

	err = db.DB.Table("notifications").
		Select("notifications.id, notifications.title, notifications.description, notifications.created_at, notifications.project_id, notification_reads.read").
		Joins("JOIN notification_reads ON notification_reads.notification_id = notifications.id").
		Where("notification_reads.user_id = ? AND notifications.deleted_at IS NULL", userID).
		Order("notifications.created_at DESC").
		Scan(&rows).Error

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}

	if rows == nil {
		rows = []NotificationResponse{}
	}

	ctx.JSON(http.StatusOK, rows)
}

func MarkNotificationRead(ctx *gin.Context) {
	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	unread, err := notifier.MarkRead(db.DB, userID, notificationID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		}
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":                    "Notification marked as read",
		"unread_notifications_count": unread,
	})
}

func MarkAllNotificationsRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := notifier.MarkAllRead(db.DB, userID); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
