// Package models defines domain models for the gamification engine.
package models

import (
	"time"

	"gorm.io/datatypes"
)

// User represents a learner on the platform.
//
// XP, Level and BadgeNames are the gamification projection mutated by the
// award engine. Level is always derived from XP and must never be written
// independently.
type User struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Username     string                      `gorm:"uniqueIndex;not null;size:255" json:"username"`
	Email        string                      `gorm:"size:255" json:"email"`
	XP           int                         `gorm:"not null;default:0" json:"xp"`
	Level        int                         `gorm:"not null;default:1" json:"level"`
	BadgeNames   datatypes.JSONSlice[string] `json:"badge_names"` // legacy earned-name list, kept alongside award records
	LoginStreak  int                         `gorm:"not null;default:0" json:"login_streak"`
	LastActiveAt *time.Time                  `json:"last_active_at"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// HasBadgeName reports whether the legacy earned-name list contains name.
func (u *User) HasBadgeName(name string) bool {
	for _, n := range u.BadgeNames {
		if n == name {
			return true
		}
	}
	return false
}
