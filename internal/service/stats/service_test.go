package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

// Mock repositories for testing
type mockLearningRepository struct {
	completed        int64
	active           int64
	completedToday   int64
	perfectQuizzes   int64
	investing        int64
	completedErr     error
	windowFrom       time.Time
	windowTo         time.Time
	activeCallCount  int
	categoryRequests []string
}

func (m *mockLearningRepository) CountCompleted(userID uint) (int64, error) {
	if m.completedErr != nil {
		return 0, m.completedErr
	}
	return m.completed, nil
}

func (m *mockLearningRepository) CountCompletedBetween(userID uint, from, to time.Time) (int64, error) {
	m.windowFrom = from
	m.windowTo = to
	return m.completedToday, nil
}

func (m *mockLearningRepository) CountPerfectQuizzes(userID uint) (int64, error) {
	return m.perfectQuizzes, nil
}

func (m *mockLearningRepository) CountCompletedInCategory(userID uint, category string) (int64, error) {
	m.categoryRequests = append(m.categoryRequests, category)
	return m.investing, nil
}

func (m *mockLearningRepository) CountActiveModules() (int64, error) {
	m.activeCallCount++
	return m.active, nil
}

type mockBudgetReader struct {
	count   int64
	budgets []models.Budget
}

func (m *mockBudgetReader) CountByUser(userID uint) (int64, error) {
	return m.count, nil
}

func (m *mockBudgetReader) ListByUserAscending(userID uint) ([]models.Budget, error) {
	return m.budgets, nil
}

type mockGoalRepository struct {
	completed int64
}

func (m *mockGoalRepository) CountCompleted(userID uint) (int64, error) {
	return m.completed, nil
}

type mockUserReader struct {
	user *models.User
	err  error
}

func (m *mockUserReader) GetByID(id uint) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func setupStatsService(learning *mockLearningRepository, budgets *mockBudgetReader, goals *mockGoalRepository, users *mockUserReader) *Service {
	log := logger.New("debug", "json", "stdout")
	return NewService(learning, budgets, goals, users, nil, 0, log)
}

func TestCollect(t *testing.T) {
	learning := &mockLearningRepository{
		completed:      5,
		active:         10,
		completedToday: 2,
		perfectQuizzes: 3,
		investing:      1,
	}
	budgets := &mockBudgetReader{
		count: 4,
		budgets: []models.Budget{
			monthBudget(t, "2024-02", 500, 400),
			monthBudget(t, "2024-03", 500, 450),
		},
	}
	goals := &mockGoalRepository{completed: 2}
	users := &mockUserReader{}

	service := setupStatsService(learning, budgets, goals, users)
	user := &models.User{ID: 1, LoginStreak: 7}

	snapshot, err := service.Collect(context.Background(), user)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	if snapshot.ModulesCompleted != 5 {
		t.Errorf("Expected 5 modules completed, got %d", snapshot.ModulesCompleted)
	}
	if snapshot.BudgetsCreated != 4 {
		t.Errorf("Expected 4 budgets created, got %d", snapshot.BudgetsCreated)
	}
	if snapshot.PerfectQuizzes != 3 {
		t.Errorf("Expected 3 perfect quizzes, got %d", snapshot.PerfectQuizzes)
	}
	if snapshot.GoalsCompleted != 2 {
		t.Errorf("Expected 2 goals completed, got %d", snapshot.GoalsCompleted)
	}
	if snapshot.ModulesCompletedToday != 2 {
		t.Errorf("Expected 2 modules completed today, got %d", snapshot.ModulesCompletedToday)
	}
	if snapshot.InvestingModulesCompleted != 1 {
		t.Errorf("Expected 1 investing module, got %d", snapshot.InvestingModulesCompleted)
	}
	if snapshot.LoginStreak != 7 {
		t.Errorf("Expected login streak 7 from user record, got %d", snapshot.LoginStreak)
	}
	if snapshot.ConsecutiveSavingsMonths != 2 {
		t.Errorf("Expected 2 consecutive savings months, got %d", snapshot.ConsecutiveSavingsMonths)
	}
	if snapshot.AllModulesCompleted {
		t.Error("Expected all-modules flag false with 5 of 10 completed")
	}

	if len(learning.categoryRequests) != 1 || learning.categoryRequests[0] != models.CategoryInvesting {
		t.Errorf("Expected a single investing category count, got %v", learning.categoryRequests)
	}
}

func TestCollect_AllModulesCompleted(t *testing.T) {
	tests := []struct {
		name      string
		completed int64
		active    int64
		want      bool
	}{
		{"all completed", 10, 10, true},
		{"more than active", 12, 10, true},
		{"partial", 9, 10, false},
		{"empty catalog never satisfies", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			learning := &mockLearningRepository{completed: tt.completed, active: tt.active}
			service := setupStatsService(learning, &mockBudgetReader{}, &mockGoalRepository{}, &mockUserReader{})

			snapshot, err := service.Collect(context.Background(), &models.User{ID: 1})
			if err != nil {
				t.Fatalf("Collect failed: %v", err)
			}
			if snapshot.AllModulesCompleted != tt.want {
				t.Errorf("AllModulesCompleted = %v, want %v", snapshot.AllModulesCompleted, tt.want)
			}
		})
	}
}

func TestCollect_SubFetchFailureAborts(t *testing.T) {
	learning := &mockLearningRepository{completedErr: errors.New("connection reset")}
	service := setupStatsService(learning, &mockBudgetReader{}, &mockGoalRepository{}, &mockUserReader{})

	snapshot, err := service.Collect(context.Background(), &models.User{ID: 1})
	if err == nil {
		t.Fatal("Expected error when a sub-fetch fails")
	}
	if snapshot != nil {
		t.Error("Expected no partial snapshot on failure")
	}
}

func TestCollectForUser_LoadsUser(t *testing.T) {
	users := &mockUserReader{user: &models.User{ID: 9, LoginStreak: 3}}
	service := setupStatsService(&mockLearningRepository{}, &mockBudgetReader{}, &mockGoalRepository{}, users)

	snapshot, err := service.CollectForUser(context.Background(), 9)
	if err != nil {
		t.Fatalf("CollectForUser failed: %v", err)
	}
	if snapshot.LoginStreak != 3 {
		t.Errorf("Expected login streak 3, got %d", snapshot.LoginStreak)
	}
}

func TestCollectForUser_UserLoadError(t *testing.T) {
	users := &mockUserReader{err: errors.New("not found")}
	service := setupStatsService(&mockLearningRepository{}, &mockBudgetReader{}, &mockGoalRepository{}, users)

	if _, err := service.CollectForUser(context.Background(), 9); err == nil {
		t.Fatal("Expected error when user load fails")
	}
}

func TestUTCDayWindow(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2024, 5, 10, 2, 30, 0, 0, loc) // 2024-05-09 21:30 UTC

	from, to := utcDayWindow(now)

	wantFrom := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) {
		t.Errorf("Expected window start %v, got %v", wantFrom, from)
	}
	if !to.Equal(wantFrom.Add(24 * time.Hour)) {
		t.Errorf("Expected 24h window, got end %v", to)
	}
}
