package models

import "gorm.io/gorm"

// Notification is a single fact. Project-scoped notifications (ProjectID set)
// fan out to the owner and all members at creation time; personal ones
// (ProjectID nil) have exactly one recipient. Per-recipient read tracking
// lives in NotificationRead.
type Notification struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	ProjectID   *uint `gorm:"index"`

	// Relationships
	Reads []NotificationRead `gorm:"foreignKey:NotificationID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// NotificationRead is the per-recipient read flag, created unread at dispatch
// time and mutated only by its recipient.
type NotificationRead struct {
	UserID         uint `gorm:"primaryKey"`
	NotificationID uint `gorm:"primaryKey"`
	Read           bool `gorm:"not null;default:false"`
}
