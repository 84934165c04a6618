package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectSorting stores a user's preferred project ordering as a JSON array
// of project ids.
type ProjectSorting struct {
	gorm.Model

	UserID  uint           `gorm:"not null;uniqueIndex"`
	Sorting datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
