package repository

import (
	"testing"

	"github.com/smartcents/gamification-engine/internal/models"
)

// createTestBudget stores a budget for one (user, month) pair.
func createTestBudget(t *testing.T, repo *BudgetRepository, userID uint, month string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID: userID,
		Month:  month,
		Incomes: []models.IncomeEntry{
			{Source: "allowance", Amount: 200, Cadence: models.IncomeCadenceMonthly},
		},
		Categories: []models.ExpenseCategory{
			{Name: "general", Budgeted: 200, Spent: 150},
		},
	}
	if err := repo.Create(budget); err != nil {
		t.Fatalf("Failed to create test budget: %v", err)
	}
	return budget
}

func TestBudgetCreate_RejectsDuplicateMonth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)
	user := createTestUser(t, db, "alice")

	createTestBudget(t, repo, user.ID, "2024-05")

	dup := &models.Budget{UserID: user.ID, Month: "2024-05"}
	if err := repo.Create(dup); err == nil {
		t.Error("Expected unique index to reject second budget for same month")
	}
}

func TestGetByUserAndMonth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)
	user := createTestUser(t, db, "alice")

	created := createTestBudget(t, repo, user.ID, "2024-05")

	budget, err := repo.GetByUserAndMonth(user.ID, "2024-05")
	if err != nil {
		t.Fatalf("GetByUserAndMonth failed: %v", err)
	}
	if budget.ID != created.ID {
		t.Errorf("Expected budget ID %d, got %d", created.ID, budget.ID)
	}
	if len(budget.Incomes) != 1 || budget.Incomes[0].Source != "allowance" {
		t.Errorf("Expected incomes round-tripped, got %v", budget.Incomes)
	}
}

func TestCountByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestBudget(t, repo, alice.ID, "2024-04")
	createTestBudget(t, repo, alice.ID, "2024-05")
	createTestBudget(t, repo, bob.ID, "2024-05")

	count, err := repo.CountByUser(alice.ID)
	if err != nil {
		t.Fatalf("CountByUser failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 budgets for alice, got %d", count)
	}
}

func TestListByUserAscending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBudgetRepository(db)
	user := createTestUser(t, db, "alice")

	// Inserted out of order; the list must come back chronological.
	createTestBudget(t, repo, user.ID, "2024-05")
	createTestBudget(t, repo, user.ID, "2024-03")
	createTestBudget(t, repo, user.ID, "2024-04")
	createTestBudget(t, repo, user.ID, "2023-12")

	budgets, err := repo.ListByUserAscending(user.ID)
	if err != nil {
		t.Fatalf("ListByUserAscending failed: %v", err)
	}

	want := []string{"2023-12", "2024-03", "2024-04", "2024-05"}
	if len(budgets) != len(want) {
		t.Fatalf("Expected %d budgets, got %d", len(want), len(budgets))
	}
	for i, month := range want {
		if budgets[i].Month != month {
			t.Errorf("Position %d: expected %s, got %s", i, month, budgets[i].Month)
		}
	}
}
