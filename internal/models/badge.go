package models

import (
	"encoding/json"
	"time"
)

// Badge represents an achievement definition in the catalog.
type Badge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Icon        string          `gorm:"size:50" json:"icon"`
	Rarity      string          `gorm:"size:50" json:"rarity"` // 'common', 'rare', 'epic', 'legendary'
	XPBonus     int             `gorm:"not null;default:0" json:"xp_bonus"`
	Criteria    json.RawMessage `gorm:"type:jsonb" json:"criteria"` // flat key -> threshold map
	Active      bool            `gorm:"not null;default:true;index" json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// UserBadge is the durable award record proving a user earned a badge.
// The composite unique index on (user_id, badge_id) is what makes awarding
// at-most-once under concurrent evaluation passes.
type UserBadge struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BadgeID   uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Badge     Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	AwardedAt time.Time `gorm:"not null" json:"awarded_at"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}
