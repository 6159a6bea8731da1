package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/smartcents/gamification-engine/internal/metrics"
	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

// XP grant reasons recorded on the metrics counter.
const (
	ReasonModuleCompletion = "module_completion"
	ReasonFirstBudget      = "first_budget"
	ReasonGoalAchieved     = "goal_achieved"
)

// UserRepository is the user store surface the progression service needs.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	ApplyXPDelta(userID uint, xpDelta int, reason string) error
	UpdateLoginActivity(userID uint, streak int, activeAt time.Time) error
}

// BudgetRepository counts budgets for the first-budget bonus gate.
type BudgetRepository interface {
	CountByUser(userID uint) (int64, error)
}

// LearningRepository resolves module XP rewards for completion grants.
type LearningRepository interface {
	GetModuleByID(id uint) (*models.LearningModule, error)
}

// Service grants activity experience. It never awards badges: the badge
// evaluator is the single authoritative award path, so activity triggers
// cannot double-award an achievement no matter how events interleave.
type Service struct {
	userRepo       UserRepository
	budgetRepo     BudgetRepository
	learningRepo   LearningRepository
	firstBudgetXP  int
	goalAchievedXP int
	log            *logger.Logger
}

// NewService creates a new progression service.
func NewService(userRepo UserRepository, budgetRepo BudgetRepository, learningRepo LearningRepository, firstBudgetXP, goalAchievedXP int, log *logger.Logger) *Service {
	return &Service{
		userRepo:       userRepo,
		budgetRepo:     budgetRepo,
		learningRepo:   learningRepo,
		firstBudgetXP:  firstBudgetXP,
		goalAchievedXP: goalAchievedXP,
		log:            log,
	}
}

// GrantModuleCompletionXP grants the module's configured XP reward.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GrantModuleCompletionXP(ctx context.Context, userID, moduleID uint) error {
	module, err := s.learningRepo.GetModuleByID(moduleID)
	if err != nil {
		return fmt.Errorf("failed to load module %d: %w", moduleID, err)
	}
	if module.XPReward <= 0 {
		return nil
	}
	if err := s.userRepo.ApplyXPDelta(userID, module.XPReward, ReasonModuleCompletion); err != nil {
		return fmt.Errorf("failed to grant module completion XP: %w", err)
	}

	metrics.RecordXPGranted(ReasonModuleCompletion, module.XPReward)
	s.log.Info().
		Uint("user_id", userID).
		Uint("module_id", module.ID).
		Int("xp", module.XPReward).
		Msg("Module completion XP granted")
	return nil
}

// GrantFirstBudgetXP grants the first-budget bonus, but only when the budget
// just created is the user's first.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GrantFirstBudgetXP(ctx context.Context, userID uint) error {
	count, err := s.budgetRepo.CountByUser(userID)
	if err != nil {
		return fmt.Errorf("failed to count budgets: %w", err)
	}
	if count != 1 {
		return nil
	}

	if err := s.userRepo.ApplyXPDelta(userID, s.firstBudgetXP, ReasonFirstBudget); err != nil {
		return fmt.Errorf("failed to grant first budget XP: %w", err)
	}

	metrics.RecordXPGranted(ReasonFirstBudget, s.firstBudgetXP)
	s.log.Info().
		Uint("user_id", userID).
		Int("xp", s.firstBudgetXP).
		Msg("First budget XP granted")
	return nil
}

// GrantGoalAchievedXP grants the goal completion bonus.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GrantGoalAchievedXP(ctx context.Context, userID uint) error {
	if err := s.userRepo.ApplyXPDelta(userID, s.goalAchievedXP, ReasonGoalAchieved); err != nil {
		return fmt.Errorf("failed to grant goal achieved XP: %w", err)
	}

	metrics.RecordXPGranted(ReasonGoalAchieved, s.goalAchievedXP)
	s.log.Info().
		Uint("user_id", userID).
		Int("xp", s.goalAchievedXP).
		Msg("Goal achieved XP granted")
	return nil
}

// RecordLogin advances the user's login streak for a login at now.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) RecordLogin(ctx context.Context, userID uint, now time.Time) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	streak := NextLoginStreak(user.LastActiveAt, user.LoginStreak, now)
	if err := s.userRepo.UpdateLoginActivity(userID, streak, now); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	s.log.Debug().
		Uint("user_id", userID).
		Int("streak", streak).
		Msg("Login streak updated")
	return nil
}
