package models

import "gorm.io/gorm"

// TeamMembership grants a non-owner user access to a project. The owner never
// holds a membership row for their own project.
type TeamMembership struct {
	gorm.Model

	UserID    uint `gorm:"not null;uniqueIndex:idx_member_project"`
	ProjectID uint `gorm:"not null;uniqueIndex:idx_member_project"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
