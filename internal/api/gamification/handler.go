// Package gamification provides the REST API the surrounding platform uses
// to trigger evaluation passes and read gamification state.
package gamification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/internal/progression"
	"github.com/smartcents/gamification-engine/internal/service/badges"
	"github.com/smartcents/gamification-engine/internal/service/stats"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

// Triggers the platform may attach to an evaluation request. A recognized
// trigger grants its activity XP before the evaluation pass runs.
const (
	TriggerLogin           = "login"
	TriggerModuleCompleted = "module_completed"
	TriggerBudgetCreated   = "budget_created"
	TriggerGoalCompleted   = "goal_completed"
)

// BadgeService interface for badge operations.
type BadgeService interface {
	EvaluateAndAward(ctx context.Context, userID uint) ([]models.Badge, error)
	GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	GetBadgeCatalog(ctx context.Context) ([]models.Badge, error)
}

// StatsService interface for snapshot reads.
type StatsService interface {
	CollectForUser(ctx context.Context, userID uint) (*stats.Snapshot, error)
}

// ProgressionService interface for activity XP grants.
type ProgressionService interface {
	GrantModuleCompletionXP(ctx context.Context, userID, moduleID uint) error
	GrantFirstBudgetXP(ctx context.Context, userID uint) error
	GrantGoalAchievedXP(ctx context.Context, userID uint) error
	RecordLogin(ctx context.Context, userID uint, now time.Time) error
}

// Handler handles gamification API requests.
type Handler struct {
	badgeService       BadgeService
	statsService       StatsService
	progressionService ProgressionService
	log                *logger.Logger
}

// NewHandler creates a new gamification handler.
func NewHandler(badgeService *badges.Service, statsService *stats.Service, progressionService *progression.Service, log *logger.Logger) *Handler {
	return &Handler{
		badgeService:       badgeService,
		statsService:       statsService,
		progressionService: progressionService,
		log:                log,
	}
}

// NewHandlerWithInterfaces creates a new gamification handler with interface dependencies (useful for testing).
func NewHandlerWithInterfaces(badgeService BadgeService, statsService StatsService, progressionService ProgressionService, log *logger.Logger) *Handler {
	return &Handler{
		badgeService:       badgeService,
		statsService:       statsService,
		progressionService: progressionService,
		log:                log,
	}
}

// RegisterRoutes registers the gamification API routes.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/users/:id/evaluate", h.EvaluateUser)
		v1.GET("/users/:id/badges", h.GetUserBadges)
		v1.GET("/users/:id/stats", h.GetUserStats)
		v1.GET("/badges", h.GetBadgeCatalog)
	}
}

// evaluateRequest is the optional body of an evaluation trigger. ModuleID is
// required only for the module_completed trigger.
type evaluateRequest struct {
	Trigger  string `json:"trigger"`
	ModuleID uint   `json:"module_id"`
}

// awardedBadge is the wire shape of a newly awarded badge.
type awardedBadge struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	XPBonus int    `json:"xp_bonus"`
	Rarity  string `json:"rarity"`
}

// EvaluateUser runs one evaluation pass for a user.
// POST /api/v1/users/:id/evaluate.
func (h *Handler) EvaluateUser(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req evaluateRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	if req.Trigger != "" {
		if err := h.applyTrigger(c.Request.Context(), userID, &req); err != nil {
			if errors.Is(err, errInvalidTrigger) {
				h.errorResponse(c, http.StatusBadRequest, err.Error())
				return
			}
			h.log.Error().Err(err).Uint("user_id", userID).Str("trigger", req.Trigger).Msg("Trigger XP grant failed")
			h.errorResponse(c, http.StatusInternalServerError, "Failed to apply trigger")
			return
		}
	}

	newlyAwarded, err := h.badgeService.EvaluateAndAward(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, badges.ErrUserNotFound) {
			h.errorResponse(c, http.StatusNotFound, "user not found")
			return
		}
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Evaluation pass failed")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to evaluate badges")
		return
	}

	response := make([]awardedBadge, 0, len(newlyAwarded))
	for _, badge := range newlyAwarded {
		response = append(response, awardedBadge{
			Name:    badge.Name,
			Icon:    badge.Icon,
			XPBonus: badge.XPBonus,
			Rarity:  badge.Rarity,
		})
	}

	h.log.Info().
		Uint("user_id", userID).
		Str("trigger", req.Trigger).
		Int("newly_awarded", len(response)).
		Msg("Evaluation pass complete")

	c.JSON(http.StatusOK, gin.H{
		"newly_awarded": response,
		"count":         len(response),
		"evaluated_at":  time.Now().UTC(),
	})
}

// GetUserBadges returns all badges a user has earned.
// GET /api/v1/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	awards, err := h.badgeService.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"badges":  awards,
		"count":   len(awards),
	})
}

// GetUserStats returns a freshly computed statistics snapshot for a user.
// GET /api/v1/users/:id/stats.
func (h *Handler) GetUserStats(c *gin.Context) {
	userID, err := h.parseUserID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.statsService.CollectForUser(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to collect user stats")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"stats":   snapshot,
	})
}

// GetBadgeCatalog returns all active badges.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog, err := h.badgeService.GetBadgeCatalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get badge catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"badges": catalog,
		"count":  len(catalog),
	})
}

var errInvalidTrigger = errors.New("invalid trigger")

// applyTrigger grants the activity XP a recognized trigger carries.
func (h *Handler) applyTrigger(ctx context.Context, userID uint, req *evaluateRequest) error {
	switch req.Trigger {
	case TriggerLogin:
		return h.progressionService.RecordLogin(ctx, userID, time.Now().UTC())
	case TriggerModuleCompleted:
		if req.ModuleID == 0 {
			return fmt.Errorf("%w: module_completed requires module_id", errInvalidTrigger)
		}
		return h.progressionService.GrantModuleCompletionXP(ctx, userID, req.ModuleID)
	case TriggerBudgetCreated:
		return h.progressionService.GrantFirstBudgetXP(ctx, userID)
	case TriggerGoalCompleted:
		return h.progressionService.GrantGoalAchievedXP(ctx, userID)
	default:
		return fmt.Errorf("%w: %s", errInvalidTrigger, req.Trigger)
	}
}

// parseUserID extracts the user id path parameter.
func (h *Handler) parseUserID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, errors.New("invalid user id")
	}
	return uint(id), nil
}

// errorResponse sends a JSON error response.
func (h *Handler) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
