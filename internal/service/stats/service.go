// Package stats aggregates per-user activity facts into the statistics
// snapshot the badge evaluator consumes.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/smartcents/gamification-engine/internal/cache"
	"github.com/smartcents/gamification-engine/internal/metrics"
	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

// activeModuleCountKey caches the catalog-wide active module count.
const activeModuleCountKey = "catalog:active_module_count"

// Snapshot holds one user's computed statistics for a single evaluation
// pass. It is ephemeral and never persisted.
type Snapshot struct {
	ModulesCompleted          int  `json:"modules_completed"`
	BudgetsCreated            int  `json:"budgets_created"`
	PerfectQuizzes            int  `json:"perfect_quizzes"`
	GoalsCompleted            int  `json:"goals_completed"`
	ModulesCompletedToday     int  `json:"modules_completed_today"`
	InvestingModulesCompleted int  `json:"investing_modules_completed"`
	AllModulesCompleted       bool `json:"all_modules_completed"`
	LoginStreak               int  `json:"login_streak"`
	ConsecutiveSavingsMonths  int  `json:"consecutive_savings_months"`
}

// LearningRepository is the learning store surface the aggregator reads.
type LearningRepository interface {
	CountCompleted(userID uint) (int64, error)
	CountCompletedBetween(userID uint, from, to time.Time) (int64, error)
	CountPerfectQuizzes(userID uint) (int64, error)
	CountCompletedInCategory(userID uint, category string) (int64, error)
	CountActiveModules() (int64, error)
}

// BudgetRepository is the budget store surface the aggregator reads.
type BudgetRepository interface {
	CountByUser(userID uint) (int64, error)
	ListByUserAscending(userID uint) ([]models.Budget, error)
}

// GoalRepository is the goal store surface the aggregator reads.
type GoalRepository interface {
	CountCompleted(userID uint) (int64, error)
}

// UserRepository loads users for CollectForUser.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// Service computes statistics snapshots. Pure read, no side effects.
type Service struct {
	learningRepo LearningRepository
	budgetRepo   BudgetRepository
	goalRepo     GoalRepository
	userRepo     UserRepository
	cache        *cache.Cache // optional, nil disables caching
	catalogTTL   time.Duration
	now          func() time.Time
	log          *logger.Logger
}

// NewService creates a new stats service. cache may be nil.
func NewService(
	learningRepo LearningRepository,
	budgetRepo BudgetRepository,
	goalRepo GoalRepository,
	userRepo UserRepository,
	c *cache.Cache,
	catalogTTL time.Duration,
	log *logger.Logger,
) *Service {
	return &Service{
		learningRepo: learningRepo,
		budgetRepo:   budgetRepo,
		goalRepo:     goalRepo,
		userRepo:     userRepo,
		cache:        c,
		catalogTTL:   catalogTTL,
		now:          time.Now,
		log:          log,
	}
}

// CollectForUser loads the user and collects their snapshot.
func (s *Service) CollectForUser(ctx context.Context, userID uint) (*Snapshot, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.Collect(ctx, user)
}

// Collect aggregates the statistics snapshot for one user. The sub-fetches
// are mutually independent and run concurrently; any failure aborts the
// whole pass so the evaluator never sees a partial snapshot.
func (s *Service) Collect(ctx context.Context, user *models.User) (*Snapshot, error) {
	start := s.now()

	snapshot := &Snapshot{
		LoginStreak: user.LoginStreak,
	}

	dayStart, dayEnd := utcDayWindow(start)

	g, ctx := errgroup.WithContext(ctx)

	var completedCount, activeModuleCount int64

	g.Go(func() error {
		count, err := s.learningRepo.CountCompleted(user.ID)
		if err != nil {
			return fmt.Errorf("completed module count: %w", err)
		}
		completedCount = count
		snapshot.ModulesCompleted = int(count)
		return nil
	})

	g.Go(func() error {
		count, err := s.activeModuleCount(ctx)
		if err != nil {
			return fmt.Errorf("active module count: %w", err)
		}
		activeModuleCount = count
		return nil
	})

	g.Go(func() error {
		count, err := s.learningRepo.CountCompletedBetween(user.ID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("modules completed today: %w", err)
		}
		snapshot.ModulesCompletedToday = int(count)
		return nil
	})

	g.Go(func() error {
		count, err := s.learningRepo.CountPerfectQuizzes(user.ID)
		if err != nil {
			return fmt.Errorf("perfect quiz count: %w", err)
		}
		snapshot.PerfectQuizzes = int(count)
		return nil
	})

	g.Go(func() error {
		count, err := s.learningRepo.CountCompletedInCategory(user.ID, models.CategoryInvesting)
		if err != nil {
			return fmt.Errorf("investing module count: %w", err)
		}
		snapshot.InvestingModulesCompleted = int(count)
		return nil
	})

	g.Go(func() error {
		count, err := s.budgetRepo.CountByUser(user.ID)
		if err != nil {
			return fmt.Errorf("budget count: %w", err)
		}
		snapshot.BudgetsCreated = int(count)
		return nil
	})

	g.Go(func() error {
		budgets, err := s.budgetRepo.ListByUserAscending(user.ID)
		if err != nil {
			return fmt.Errorf("budget history: %w", err)
		}
		snapshot.ConsecutiveSavingsMonths = ConsecutiveSavingsMonths(budgets)
		return nil
	})

	g.Go(func() error {
		count, err := s.goalRepo.CountCompleted(user.ID)
		if err != nil {
			return fmt.Errorf("completed goal count: %w", err)
		}
		snapshot.GoalsCompleted = int(count)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect statistics for user %d: %w", user.ID, err)
	}

	snapshot.AllModulesCompleted = activeModuleCount > 0 && completedCount >= activeModuleCount

	metrics.ObserveSnapshotDuration(s.now().Sub(start))
	s.log.Debug().
		Uint("user_id", user.ID).
		Int("modules_completed", snapshot.ModulesCompleted).
		Int("consecutive_savings_months", snapshot.ConsecutiveSavingsMonths).
		Msg("Statistics snapshot collected")

	return snapshot, nil
}

// activeModuleCount reads the catalog-wide active module count, through the
// cache when one is configured. A cache failure falls back to the database.
func (s *Service) activeModuleCount(ctx context.Context) (int64, error) {
	if s.cache != nil {
		count, err := s.cache.GetInt64(ctx, activeModuleCountKey)
		if err == nil {
			return count, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn().Err(err).Msg("Active module count cache read failed")
		}
	}

	count, err := s.learningRepo.CountActiveModules()
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetInt64(ctx, activeModuleCountKey, count, s.catalogTTL); err != nil {
			s.log.Warn().Err(err).Msg("Active module count cache write failed")
		}
	}

	return count, nil
}

// utcDayWindow returns [00:00, 24:00) of the UTC day containing now.
func utcDayWindow(now time.Time) (time.Time, time.Time) {
	utc := now.UTC()
	start := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
