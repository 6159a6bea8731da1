package stats

import (
	"time"

	"github.com/smartcents/gamification-engine/internal/models"
)

// Weekly income entries are normalized to a monthly-equivalent rate.
const weeksPerMonth = 4

// MonthlyIncome returns a budget's total income normalized to a monthly rate.
func MonthlyIncome(budget *models.Budget) float64 {
	var total float64
	for _, income := range budget.Incomes {
		switch income.Cadence {
		case models.IncomeCadenceWeekly:
			total += income.Amount * weeksPerMonth
		default:
			total += income.Amount
		}
	}
	return total
}

// MonthlySpent returns a budget's total tracked actual spend.
func MonthlySpent(budget *models.Budget) float64 {
	var total float64
	for _, category := range budget.Categories {
		total += category.Spent
	}
	return total
}

// MonthlySavings returns normalized income minus tracked actual spend.
func MonthlySavings(budget *models.Budget) float64 {
	return MonthlyIncome(budget) - MonthlySpent(budget)
}

// ConsecutiveSavingsMonths returns the length of the longest run of
// calendar-consecutive months ending at the most recent month on record
// whose savings are strictly positive. The input must be ordered ascending
// by month key.
//
// The scan walks backward from the latest month: it stops the first time a
// month is not savings-positive or is not exactly one calendar month before
// the month anchoring the run, so an all-positive but gapped history counts
// only its trailing consecutive run.
func ConsecutiveSavingsMonths(budgets []models.Budget) int {
	if len(budgets) == 0 {
		return 0
	}

	latest := len(budgets) - 1
	if MonthlySavings(&budgets[latest]) <= 0 {
		return 0
	}

	anchor, err := time.Parse(models.MonthKeyLayout, budgets[latest].Month)
	if err != nil {
		return 1
	}

	streak := 1
	for i := latest - 1; i >= 0; i-- {
		prev, err := time.Parse(models.MonthKeyLayout, budgets[i].Month)
		if err != nil {
			break
		}
		// AddDate handles the year rollover: one month before 2025-01 is 2024-12.
		if !prev.Equal(anchor.AddDate(0, -1, 0)) {
			break
		}
		if MonthlySavings(&budgets[i]) <= 0 {
			break
		}
		streak++
		anchor = prev
	}

	return streak
}
