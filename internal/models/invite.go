package models

import (
	"time"

	"gorm.io/gorm"
)

type Invite struct {
	gorm.Model

	ProjectID  uint `gorm:"not null;index"`
	ExpiresAt  *time.Time
	MaxUsage   *int
	UsageCount int  `gorm:"not null;default:0"`
	Active     bool `gorm:"not null;default:true"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

// Expired reports whether the invite's expiry has passed. Invites without an
// expiry never expire.
func (i *Invite) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && i.ExpiresAt.Before(now)
}

// UsageExhausted reports whether the usage cap has been reached. Invites
// without a cap are never exhausted.
func (i *Invite) UsageExhausted() bool {
	return i.MaxUsage != nil && i.UsageCount >= *i.MaxUsage
}

// Redeemable reports whether the invite can still be joined at the given time.
func (i *Invite) Redeemable(now time.Time) bool {
	return i.Active && !i.Expired(now) && !i.UsageExhausted()
}
