// Package badges provides badge evaluation and awarding.
package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	prommetrics "github.com/smartcents/gamification-engine/internal/metrics"
	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/internal/repository"
	"github.com/smartcents/gamification-engine/internal/service/stats"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

// ErrUserNotFound is returned when an evaluation pass targets an unknown user.
var ErrUserNotFound = errors.New("user not found")

// ReasonBadgeBonus is the ledger reason recorded for badge XP bonuses.
const ReasonBadgeBonus = "badge_bonus"

// BadgeRepository is the badge store surface the service needs.
type BadgeRepository interface {
	ListActive() ([]models.Badge, error)
	GetByID(id uint) (*models.Badge, error)
	EarnedBadgeIDs(userID uint) (map[uint]struct{}, error)
	InsertAwardIfAbsent(userID, badgeID uint, awardedAt time.Time) (bool, error)
	GetUserAwards(userID uint) ([]models.UserBadge, error)
	BadgeHoldersCount(badgeID uint) (int64, error)
}

// UserRepository is the user store surface the service needs.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	ApplyAwards(userID uint, xpDelta int, reason string, badgeNames []string) error
}

// StatsCollector produces the statistics snapshot for one evaluation pass.
type StatsCollector interface {
	Collect(ctx context.Context, user *models.User) (*stats.Snapshot, error)
}

// Service evaluates badge criteria and awards qualifying badges.
type Service struct {
	badgeRepo BadgeRepository
	userRepo  UserRepository
	collector StatsCollector
	now       func() time.Time
	log       *logger.Logger
}

// NewService creates a new badge service.
func NewService(
	badgeRepo *repository.BadgeRepository,
	userRepo *repository.UserRepository,
	collector *stats.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo: badgeRepo,
		userRepo:  userRepo,
		collector: collector,
		now:       time.Now,
		log:       log,
	}
}

// NewServiceWithInterfaces creates a new badge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	badgeRepo BadgeRepository,
	userRepo UserRepository,
	collector StatsCollector,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo: badgeRepo,
		userRepo:  userRepo,
		collector: collector,
		now:       time.Now,
		log:       log,
	}
}

// EvaluateAndAward runs one evaluation pass for a user and returns the badges
// newly awarded by this call.
//
// The pass is idempotent: repeated calls without intervening activity award
// nothing new. Under concurrent passes for the same user the award record's
// unique index guarantees each (user, badge) pair is awarded at most once;
// the losing insert is skipped silently and its XP bonus never applied. If
// any storage read or insert fails the pass aborts before the user row is
// written, and when nothing qualifies the user row is not written at all.
func (s *Service) EvaluateAndAward(ctx context.Context, userID uint) ([]models.Badge, error) {
	start := s.now()

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		prommetrics.RecordEvaluation(prommetrics.EvaluationStatusError)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}

	snapshot, err := s.collector.Collect(ctx, user)
	if err != nil {
		prommetrics.RecordEvaluation(prommetrics.EvaluationStatusError)
		return nil, fmt.Errorf("failed to collect snapshot: %w", err)
	}

	catalog, err := s.badgeRepo.ListActive()
	if err != nil {
		prommetrics.RecordEvaluation(prommetrics.EvaluationStatusError)
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	earnedIDs, err := s.badgeRepo.EarnedBadgeIDs(userID)
	if err != nil {
		prommetrics.RecordEvaluation(prommetrics.EvaluationStatusError)
		return nil, fmt.Errorf("failed to load earned badges: %w", err)
	}

	candidates := s.selectCandidates(snapshot, catalog, earnedIDs, user)

	awarded, err := s.award(userID, candidates)
	if err != nil {
		prommetrics.RecordEvaluation(prommetrics.EvaluationStatusError)
		return nil, err
	}

	prommetrics.RecordEvaluation(prommetrics.EvaluationStatusSuccess)
	prommetrics.ObserveEvaluationDuration(s.now().Sub(start))

	return awarded, nil
}

// award persists award records for the candidates and applies the confirmed
// XP bonuses and badge names to the user in a single write. XP for a badge
// is only counted after its award record insert is confirmed by this call,
// so a concurrent pass losing the insert race contributes no XP.
func (s *Service) award(userID uint, candidates []models.Badge) ([]models.Badge, error) {
	var (
		awarded  []models.Badge
		xpDelta  int
		newNames []string
	)

	for i := range candidates {
		badge := candidates[i]

		inserted, err := s.badgeRepo.InsertAwardIfAbsent(userID, badge.ID, s.now())
		if err != nil {
			return nil, fmt.Errorf("failed to award badge %s: %w", badge.Name, err)
		}
		if !inserted {
			// Lost the race to a concurrent pass. Not an error, not ours to count.
			s.log.Debug().
				Uint("user_id", userID).
				Str("badge", badge.Name).
				Msg("Award record already present, skipping")
			continue
		}

		awarded = append(awarded, badge)
		xpDelta += badge.XPBonus
		newNames = append(newNames, badge.Name)

		prommetrics.RecordBadgeAwarded(badge.Name, badge.Rarity)
		if count, err := s.badgeRepo.BadgeHoldersCount(badge.ID); err == nil {
			prommetrics.SetActiveBadgeHolders(badge.Name, int(count))
		}

		s.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.Name).
			Int("xp_bonus", badge.XPBonus).
			Msg("Badge awarded")
	}

	if len(awarded) == 0 {
		return nil, nil
	}

	if err := s.userRepo.ApplyAwards(userID, xpDelta, ReasonBadgeBonus, newNames); err != nil {
		return nil, fmt.Errorf("failed to apply awards to user %d: %w", userID, err)
	}

	return awarded, nil
}

// GetUserBadges retrieves all award records for a user.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	return s.badgeRepo.GetUserAwards(userID)
}

// GetBadgeCatalog retrieves all active badges.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeCatalog(ctx context.Context) ([]models.Badge, error) {
	return s.badgeRepo.ListActive()
}

// GetBadgeByID retrieves a badge by its ID.
//
//nolint:revive // ctx reserved for future context-aware operations (tracing, cancellation)
func (s *Service) GetBadgeByID(ctx context.Context, badgeID uint) (*models.Badge, error) {
	return s.badgeRepo.GetByID(badgeID)
}
