package repository

import (
	"fmt"

	"github.com/smartcents/gamification-engine/internal/models"
)

// GoalRepository handles goal-related database operations.
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository.
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create stores a new savings goal.
func (r *GoalRepository) Create(goal *models.Goal) error {
	if err := r.db.Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// ListByUser returns all goals belonging to a user.
func (r *GoalRepository) ListByUser(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list goals for user %d: %w", userID, err)
	}
	return goals, nil
}

// CountCompleted returns how many goals a user has completed.
func (r *GoalRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Goal{}).
		Where("user_id = ? AND status = ?", userID, models.GoalStatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed goals for user %d: %w", userID, err)
	}
	return count, nil
}
