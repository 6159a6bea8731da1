package models

import (
	"time"

	"gorm.io/datatypes"
)

// MonthKeyLayout is the time layout of the Budget.Month key, e.g. "2024-05".
const MonthKeyLayout = "2006-01"

// Income cadence constants.
const (
	IncomeCadenceWeekly  = "weekly"
	IncomeCadenceMonthly = "monthly"
)

// IncomeEntry is a single income source within a monthly budget.
type IncomeEntry struct {
	Source  string  `json:"source"`
	Amount  float64 `json:"amount"`
	Cadence string  `json:"cadence"` // 'weekly' or 'monthly'
}

// BudgetTransaction is a dated spend recorded against an expense category.
type BudgetTransaction struct {
	Amount float64   `json:"amount"`
	Note   string    `json:"note"`
	Date   time.Time `json:"date"`
}

// ExpenseCategory is a planned spending bucket with its tracked actuals.
type ExpenseCategory struct {
	Name         string              `json:"name"`
	Budgeted     float64             `json:"budgeted"`
	Spent        float64             `json:"spent"`
	Transactions []BudgetTransaction `json:"transactions,omitempty"`
}

// Budget is one user's plan for one calendar month. Exactly one row exists
// per (user, month).
type Budget struct {
	ID         uint                                 `gorm:"primaryKey" json:"id"`
	UserID     uint                                 `gorm:"not null;index:idx_budget_user_month,unique" json:"user_id"`
	User       User                                 `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Month      string                               `gorm:"size:7;not null;index:idx_budget_user_month,unique" json:"month"` // "YYYY-MM"
	Incomes    datatypes.JSONSlice[IncomeEntry]     `json:"incomes"`
	Categories datatypes.JSONSlice[ExpenseCategory] `json:"categories"`
	CreatedAt  time.Time                            `json:"created_at"`
	UpdatedAt  time.Time                            `json:"updated_at"`
}

// TableName specifies the table name for Budget model.
func (Budget) TableName() string {
	return "budgets"
}
