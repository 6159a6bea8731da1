package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/internal/progression"
)

// UserRepository handles user-related database operations.
//
// XP and level on the user row are a projection of the append-only xp_events
// ledger: every grant appends a ledger entry and re-derives the projection
// from the ledger total inside the same transaction.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. A user created with a non-zero experience total
// gets a seed ledger entry so replay reproduces the projection.
func (r *UserRepository) Create(user *models.User) error {
	if user.Level == 0 {
		user.Level = progression.Level(user.XP)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		if user.XP != 0 {
			event := models.XPEvent{UserID: user.ID, Amount: user.XP, Reason: models.ReasonInitialXP}
			if err := tx.Create(&event).Error; err != nil {
				return fmt.Errorf("failed to seed xp ledger for user %d: %w", user.ID, err)
			}
		}
		return nil
	})
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// ApplyAwards applies a confirmed award batch to the user's gamification
// projection in one transaction: a ledger entry for the XP delta, XP and
// level re-derived from the ledger total, and badge names appended with
// duplicates skipped. Callers must only pass XP for award records whose
// insert was confirmed.
func (r *UserRepository) ApplyAwards(userID uint, xpDelta int, reason string, badgeNames []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}

		if xpDelta != 0 {
			event := models.XPEvent{UserID: userID, Amount: xpDelta, Reason: reason}
			if err := tx.Create(&event).Error; err != nil {
				return fmt.Errorf("failed to append xp event for user %d: %w", userID, err)
			}
		}

		total, err := ledgerTotal(tx, userID)
		if err != nil {
			return err
		}
		user.XP = total
		user.Level = progression.Level(user.XP)

		for _, name := range badgeNames {
			if !user.HasBadgeName(name) {
				user.BadgeNames = append(user.BadgeNames, name)
			}
		}

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to apply awards to user %d: %w", userID, err)
		}
		return nil
	})
}

// ApplyXPDelta grants experience without touching the badge list. The ledger
// entry and the re-derived projection land in the same transaction.
func (r *UserRepository) ApplyXPDelta(userID uint, xpDelta int, reason string) error {
	return r.ApplyAwards(userID, xpDelta, reason, nil)
}

// RebuildProjection re-derives a user's XP, level and badge names from the
// xp_events ledger and the award records. Used for audit repair after a
// suspect write.
func (r *UserRepository) RebuildProjection(userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}

		total, err := ledgerTotal(tx, userID)
		if err != nil {
			return err
		}
		user.XP = total
		user.Level = progression.Level(user.XP)

		var awardedNames []string
		err = tx.Model(&models.UserBadge{}).
			Joins("JOIN badges ON badges.id = user_badges.badge_id").
			Where("user_badges.user_id = ?", userID).
			Pluck("badges.name", &awardedNames).Error
		if err != nil {
			return fmt.Errorf("failed to list awarded badge names for user %d: %w", userID, err)
		}
		// Legacy names without award records are kept, awarded names re-added.
		for _, name := range awardedNames {
			if !user.HasBadgeName(name) {
				user.BadgeNames = append(user.BadgeNames, name)
			}
		}

		if err := tx.Save(&user).Error; err != nil {
			return fmt.Errorf("failed to rebuild projection for user %d: %w", userID, err)
		}
		return nil
	})
}

// ListXPEvents returns a user's experience ledger, oldest first.
func (r *UserRepository) ListXPEvents(userID uint) ([]models.XPEvent, error) {
	var events []models.XPEvent
	err := r.db.Where("user_id = ?", userID).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list xp events for user %d: %w", userID, err)
	}
	return events, nil
}

// UpdateLoginActivity stores a recomputed login streak and activity timestamp.
func (r *UserRepository) UpdateLoginActivity(userID uint, streak int, activeAt time.Time) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"login_streak":   streak,
			"last_active_at": activeAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update login activity for user %d: %w", userID, err)
	}
	return nil
}

// ledgerTotal sums the experience ledger, clamped at zero.
func ledgerTotal(tx *gorm.DB, userID uint) (int, error) {
	var total int
	err := tx.Model(&models.XPEvent{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum xp ledger for user %d: %w", userID, err)
	}
	if total < 0 {
		total = 0
	}
	return total, nil
}
