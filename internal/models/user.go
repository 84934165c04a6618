package models

import "gorm.io/gorm"

type User struct {
	gorm.Model

	Username           string `gorm:"uniqueIndex;not null"`
	PasswordHash       string `gorm:"not null"`
	AvatarID           int    `gorm:"not null"`
	TwoFASecret        string
	PendingTwoFASecret string

	// Relationships
	OwnedProjects     []Project          `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	TeamMemberships   []TeamMembership   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AuthoredTodos     []Todo             `gorm:"foreignKey:AuthorID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	AssignedTodos     []Todo             `gorm:"foreignKey:AssignedUserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	NotificationReads []NotificationRead `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
