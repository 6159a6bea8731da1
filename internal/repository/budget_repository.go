package repository

import (
	"fmt"

	"github.com/smartcents/gamification-engine/internal/models"
)

// BudgetRepository handles budget-related database operations.
type BudgetRepository struct {
	db *DB
}

// NewBudgetRepository creates a new budget repository.
func NewBudgetRepository(db *DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create stores a monthly budget. The (user_id, month) unique index rejects
// a second budget for the same month.
func (r *BudgetRepository) Create(budget *models.Budget) error {
	if err := r.db.Create(budget).Error; err != nil {
		return fmt.Errorf("failed to create budget: %w", err)
	}
	return nil
}

// GetByUserAndMonth retrieves the budget for one (user, month) pair.
func (r *BudgetRepository) GetByUserAndMonth(userID uint, month string) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.Where("user_id = ? AND month = ?", userID, month).First(&budget).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get budget for user %d month %s: %w", userID, month, err)
	}
	return &budget, nil
}

// CountByUser returns how many budgets a user has ever created.
func (r *BudgetRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Budget{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count budgets for user %d: %w", userID, err)
	}
	return count, nil
}

// ListByUserAscending returns a user's full budget history ordered by month
// key ascending. The "YYYY-MM" key sorts chronologically as text, which the
// consecutive-savings scan relies on.
func (r *BudgetRepository) ListByUserAscending(userID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.Where("user_id = ?", userID).
		Order("month ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets for user %d: %w", userID, err)
	}
	return budgets, nil
}
