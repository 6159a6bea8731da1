package models

import (
	"time"
)

// ReasonInitialXP marks the ledger entry seeding a user created with a
// non-zero experience total.
const ReasonInitialXP = "initial"

// XPEvent is one entry in the append-only experience ledger. The xp and
// level columns on User are a projection of this ledger; entries are never
// updated or deleted, so the projection can be rebuilt by replay at any time.
type XPEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount    int       `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:50;not null" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for XPEvent model.
func (XPEvent) TableName() string {
	return "xp_events"
}
