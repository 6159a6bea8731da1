package repository

import (
	"fmt"
	"time"

	"github.com/smartcents/gamification-engine/internal/models"
)

// LearningRepository handles module catalog and completion database operations.
type LearningRepository struct {
	db *DB
}

// NewLearningRepository creates a new learning repository.
func NewLearningRepository(db *DB) *LearningRepository {
	return &LearningRepository{db: db}
}

// CreateModule adds a module to the catalog.
func (r *LearningRepository) CreateModule(module *models.LearningModule) error {
	if err := r.db.Create(module).Error; err != nil {
		return fmt.Errorf("failed to create learning module: %w", err)
	}
	return nil
}

// GetModuleByID retrieves a catalog module by ID.
func (r *LearningRepository) GetModuleByID(id uint) (*models.LearningModule, error) {
	var module models.LearningModule
	if err := r.db.First(&module, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get module %d: %w", id, err)
	}
	return &module, nil
}

// CountActiveModules returns the number of active modules in the catalog.
func (r *LearningRepository) CountActiveModules() (int64, error) {
	var count int64
	err := r.db.Model(&models.LearningModule{}).
		Where("active = ?", true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active modules: %w", err)
	}
	return count, nil
}

// RecordCompletion stores a completion record for a user.
func (r *LearningRepository) RecordCompletion(completion *models.ModuleCompletion) error {
	if err := r.db.Create(completion).Error; err != nil {
		return fmt.Errorf("failed to record module completion: %w", err)
	}
	return nil
}

// CountCompleted returns how many modules a user has fully completed.
func (r *LearningRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND status = ?", userID, models.CompletionStatusCompleted).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completed modules for user %d: %w", userID, err)
	}
	return count, nil
}

// CountCompletedBetween counts completions inside [from, to). The aggregator
// passes the current UTC day window so completions on either side of midnight
// count toward their own day.
func (r *LearningRepository) CountCompletedBetween(userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
			userID, models.CompletionStatusCompleted, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count completions in window for user %d: %w", userID, err)
	}
	return count, nil
}

// CountPerfectQuizzes counts completed modules finished with a quiz score of 100.
func (r *LearningRepository) CountPerfectQuizzes(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND status = ? AND quiz_score = ?",
			userID, models.CompletionStatusCompleted, 100).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count perfect quizzes for user %d: %w", userID, err)
	}
	return count, nil
}

// CountCompletedInCategory counts completed modules in one catalog category.
func (r *LearningRepository) CountCompletedInCategory(userID uint, category string) (int64, error) {
	var count int64
	err := r.db.Model(&models.ModuleCompletion{}).
		Where("user_id = ? AND status = ? AND category = ?",
			userID, models.CompletionStatusCompleted, category).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count %s completions for user %d: %w", category, userID, err)
	}
	return count, nil
}
