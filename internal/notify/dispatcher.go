// Package notify creates notification facts, materializes per-recipient
// unread state, and pushes live events through the realtime hub. Pushes are
// best-effort and never fail the write path that triggered them.
package notify

import (
	"errors"

	"github.com/taskhive-dev/taskhive/internal/models"
	"github.com/taskhive-dev/taskhive/internal/realtime"
	"gorm.io/gorm"
)

type Dispatcher struct {
	hub *realtime.Hub
}

func NewDispatcher(hub *realtime.Hub) *Dispatcher {
	return &Dispatcher{hub: hub}
}

// ProjectRecipients returns the owner plus all current team members of the
// project. The set is a snapshot taken at call time; later membership changes
// do not retroactively affect recipients of past notifications.
func ProjectRecipients(db *gorm.DB, projectID uint) ([]uint, error) {
	var project models.Project

	if err := db.First(&project, projectID).Error; err != nil {
		return nil, err
	}

	var memberships []models.TeamMembership

	if err := db.Where("project_id = ?", projectID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	recipients := []uint{project.OwnerID}

	for _, membership := range memberships {
		if membership.UserID != project.OwnerID {
			recipients = append(recipients, membership.UserID)
		}
	}

	return recipients, nil
}

// NotifyProject persists a project-scoped notification with one unread
// read-state row per recipient, then pushes a notification.new event to each
// recipient's live connections in the background.
func (d *Dispatcher) NotifyProject(db *gorm.DB, projectID uint, title, description string) (*models.Notification, error) {
	recipients, err := ProjectRecipients(db, projectID)

	if err != nil {
		return nil, err
	}

	notification := models.Notification{
		Title:       title,
		Description: description,
		ProjectID:   &projectID,
	}

	if err := d.persist(db, &notification, recipients); err != nil {
		return nil, err
	}

	d.pushNew(&notification, recipients)

	return &notification, nil
}

// NotifyUser is the single-recipient variant of NotifyProject.
func (d *Dispatcher) NotifyUser(db *gorm.DB, userID uint, title, description string) (*models.Notification, error) {
	notification := models.Notification{
		Title:       title,
		Description: description,
	}

	recipients := []uint{userID}

	if err := d.persist(db, &notification, recipients); err != nil {
		return nil, err
	}

	d.pushNew(&notification, recipients)

	return &notification, nil
}

func (d *Dispatcher) persist(db *gorm.DB, notification *models.Notification, recipients []uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}

		for _, userID := range recipients {
			read := models.NotificationRead{
				UserID:         userID,
				NotificationID: notification.ID,
				Read:           false,
			}

			if err := tx.Create(&read).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// pushNew fans the event out after the rows are committed. Delivery is
// fire-and-forget relative to the caller; offline recipients reconcile by
// pulling notification history on reconnect.
func (d *Dispatcher) pushNew(notification *models.Notification, recipients []uint) {
	event := realtime.NewNotificationEvent(realtime.NotificationPayload{
		ID:          notification.ID,
		Title:       notification.Title,
		Description: notification.Description,
		CreatedAt:   notification.CreatedAt,
		ProjectID:   notification.ProjectID,
	})

	go d.hub.Broadcast(recipients, event)
}

// MarkRead flips the caller's read flag for one notification. Marking an
// already-read notification is a no-op; either way the caller's current
// unread count is returned.
func (d *Dispatcher) MarkRead(db *gorm.DB, userID, notificationID uint) (int64, error) {
	var notification models.Notification

	if err := db.First(&notification, notificationID).Error; err != nil {
		return 0, err
	}

	var read models.NotificationRead

	err := db.Where("user_id = ? AND notification_id = ?", userID, notificationID).
		First(&read).Error

	switch {
	case err == nil:
		if !read.Read {
			if err := db.Model(&models.NotificationRead{}).
				Where("user_id = ? AND notification_id = ?", userID, notificationID).
				Update("read", true).Error; err != nil {
				return 0, err
			}
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		read = models.NotificationRead{
			UserID:         userID,
			NotificationID: notificationID,
			Read:           true,
		}
		if err := db.Create(&read).Error; err != nil {
			return 0, err
		}
	default:
		return 0, err
	}

	return d.UnreadCount(db, userID)
}

// MarkAllRead flips every unread read-state for the user in one statement and
// pushes a read_all event to the user's own connections so other devices for
// the same account sync instantly.
func (d *Dispatcher) MarkAllRead(db *gorm.DB, userID uint) error {
	err := db.Model(&models.NotificationRead{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error

	if err != nil {
		return err
	}

	go d.hub.SendToUser(userID, realtime.NewReadAllEvent(0))

	return nil
}

func (d *Dispatcher) UnreadCount(db *gorm.DB, userID uint) (int64, error) {
	var count int64

	err := db.Model(&models.NotificationRead{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error

	return count, err
}

// PushToProject broadcasts an arbitrary event to the project's current
// recipient set, in the background. Used for todo and membership events that
// accompany, but are distinct from, stored notifications.
func (d *Dispatcher) PushToProject(db *gorm.DB, projectID uint, event interface{}, exclude ...uint) {
	recipients, err := ProjectRecipients(db, projectID)

	if err != nil {
		return
	}

	filtered := recipients[:0]

	for _, userID := range recipients {
		skip := false
		for _, excluded := range exclude {
			if userID == excluded {
				skip = true
				break
			}
		}
		if !skip {
			filtered = append(filtered, userID)
		}
	}

	go d.hub.Broadcast(filtered, event)
}

// PushToUser sends an event to one user's connections in the background.
func (d *Dispatcher) PushToUser(userID uint, event interface{}) {
	go d.hub.SendToUser(userID, event)
}
