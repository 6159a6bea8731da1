package models

import (
	"time"
)

// LearningModule represents an entry in the learning catalog.
type LearningModule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null;size:255" json:"title"`
	Category  string    `gorm:"size:100;index" json:"category"` // e.g. 'budgeting', 'saving', 'investing'
	XPReward  int       `gorm:"not null;default:0" json:"xp_reward"`
	Active    bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for LearningModule model.
func (LearningModule) TableName() string {
	return "learning_modules"
}

// ModuleCompletion records one user's progress through one module.
// Category is denormalized from the catalog so category counts don't need a join.
type ModuleCompletion struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index:idx_completion_user_module,unique" json:"user_id"`
	User        User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ModuleID    uint       `gorm:"not null;index:idx_completion_user_module,unique" json:"module_id"`
	Module      LearningModule `gorm:"foreignKey:ModuleID" json:"module,omitempty"`
	Status      string     `gorm:"size:50;index" json:"status"` // 'in_progress', 'completed'
	CompletedAt *time.Time `gorm:"index" json:"completed_at"`
	TimeSpent   int        `gorm:"default:0" json:"time_spent"` // minutes
	QuizScore   *int       `json:"quiz_score"`                  // 0-100, nil when no quiz taken
	Category    string     `gorm:"size:100;index" json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for ModuleCompletion model.
func (ModuleCompletion) TableName() string {
	return "module_completions"
}

// Completion status constants.
const (
	CompletionStatusInProgress = "in_progress"
	CompletionStatusCompleted  = "completed"
)

// CategoryInvesting is the catalog category tracked by investing-related badges.
const CategoryInvesting = "investing"
