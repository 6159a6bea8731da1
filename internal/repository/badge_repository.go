package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartcents/gamification-engine/internal/models"
)

// BadgeRepository handles badge catalog and award-record database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create creates a new badge in the catalog.
func (r *BadgeRepository) Create(badge *models.Badge) error {
	return r.db.Create(badge).Error
}

// GetByID retrieves a badge by its ID.
func (r *BadgeRepository) GetByID(id uint) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.First(&badge, id).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

// GetByName retrieves a badge by its name.
func (r *BadgeRepository) GetByName(name string) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.Where("name = ?", name).First(&badge).Error; err != nil {
		return nil, err
	}
	return &badge, nil
}

// ListActive retrieves all active badges from the catalog.
func (r *BadgeRepository) ListActive() ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.Where("active = ?", true).
		Order("created_at ASC").
		Find(&badges).Error
	return badges, err
}

// UpsertByName creates the badge or refreshes its definition when a badge
// with the same name already exists. Used to seed the catalog from config.
func (r *BadgeRepository) UpsertByName(badge *models.Badge) error {
	var existing models.Badge
	err := r.db.Where("name = ?", badge.Name).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(badge).Error
		}
		return fmt.Errorf("failed to look up badge %s: %w", badge.Name, err)
	}

	existing.Description = badge.Description
	existing.Icon = badge.Icon
	existing.Rarity = badge.Rarity
	existing.XPBonus = badge.XPBonus
	existing.Criteria = badge.Criteria
	existing.Active = badge.Active
	if err := r.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update badge %s: %w", badge.Name, err)
	}
	badge.ID = existing.ID
	return nil
}

// InsertAwardIfAbsent inserts an award record for (user, badge) unless one
// already exists. The insert rides on the composite unique index via
// ON CONFLICT DO NOTHING, so under a race between two evaluation passes
// exactly one insert reports success. Returns false without error when the
// record was already there.
func (r *BadgeRepository) InsertAwardIfAbsent(userID, badgeID uint, awardedAt time.Time) (bool, error) {
	award := models.UserBadge{
		UserID:    userID,
		BadgeID:   badgeID,
		AwardedAt: awardedAt,
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&award)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert award record: %w", result.Error)
	}

	return result.RowsAffected == 1, nil
}

// EarnedBadgeIDs returns the set of badge IDs a user holds award records for.
func (r *BadgeRepository) EarnedBadgeIDs(userID uint) (map[uint]struct{}, error) {
	var ids []uint
	err := r.db.Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Pluck("badge_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list earned badge ids for user %d: %w", userID, err)
	}

	earned := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		earned[id] = struct{}{}
	}
	return earned, nil
}

// GetUserAwards retrieves all award records for a user with badge details preloaded.
func (r *BadgeRepository) GetUserAwards(userID uint) ([]models.UserBadge, error) {
	var awards []models.UserBadge
	err := r.db.
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("awarded_at DESC").
		Find(&awards).Error
	return awards, err
}

// BadgeHoldersCount returns the number of users holding a specific badge.
func (r *BadgeRepository) BadgeHoldersCount(badgeID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserBadge{}).
		Where("badge_id = ?", badgeID).
		Count(&count).Error
	return count, err
}

// RawCriteria builds the jsonb criteria document from a flat threshold map.
func RawCriteria(criteria map[string]interface{}) (json.RawMessage, error) {
	raw, err := json.Marshal(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to encode badge criteria: %w", err)
	}
	return raw, nil
}
