//nolint:noctx // Test file uses http.NewRequest for simplicity
package gamification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/smartcents/gamification-engine/internal/models"
	"github.com/smartcents/gamification-engine/internal/service/badges"
	"github.com/smartcents/gamification-engine/internal/service/stats"
	"github.com/smartcents/gamification-engine/pkg/logger"
)

// Mock Badge Service
type mockBadgeService struct {
	newlyAwarded map[uint][]models.Badge
	userBadges   map[uint][]models.UserBadge
	catalog      []models.Badge
	evaluateErr  error
}

func newMockBadgeService() *mockBadgeService {
	return &mockBadgeService{
		newlyAwarded: make(map[uint][]models.Badge),
		userBadges:   make(map[uint][]models.UserBadge),
	}
}

func (m *mockBadgeService) EvaluateAndAward(ctx context.Context, userID uint) ([]models.Badge, error) {
	if m.evaluateErr != nil {
		return nil, m.evaluateErr
	}
	return m.newlyAwarded[userID], nil
}

func (m *mockBadgeService) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	awards, exists := m.userBadges[userID]
	if !exists {
		return []models.UserBadge{}, nil
	}
	return awards, nil
}

func (m *mockBadgeService) GetBadgeCatalog(ctx context.Context) ([]models.Badge, error) {
	return m.catalog, nil
}

// Mock Progression Service
type mockProgressionService struct {
	logins            []uint
	moduleGrants      map[uint][]uint
	firstBudgetGrants []uint
	goalGrants        []uint
	err               error
}

func newMockProgressionService() *mockProgressionService {
	return &mockProgressionService{moduleGrants: make(map[uint][]uint)}
}

func (m *mockProgressionService) GrantModuleCompletionXP(ctx context.Context, userID, moduleID uint) error {
	if m.err != nil {
		return m.err
	}
	m.moduleGrants[userID] = append(m.moduleGrants[userID], moduleID)
	return nil
}

func (m *mockProgressionService) GrantFirstBudgetXP(ctx context.Context, userID uint) error {
	if m.err != nil {
		return m.err
	}
	m.firstBudgetGrants = append(m.firstBudgetGrants, userID)
	return nil
}

func (m *mockProgressionService) GrantGoalAchievedXP(ctx context.Context, userID uint) error {
	if m.err != nil {
		return m.err
	}
	m.goalGrants = append(m.goalGrants, userID)
	return nil
}

func (m *mockProgressionService) RecordLogin(ctx context.Context, userID uint, now time.Time) error {
	if m.err != nil {
		return m.err
	}
	m.logins = append(m.logins, userID)
	return nil
}

// Mock Stats Service
type mockStatsService struct {
	snapshots map[uint]*stats.Snapshot
	err       error
}

func newMockStatsService() *mockStatsService {
	return &mockStatsService{snapshots: make(map[uint]*stats.Snapshot)}
}

func (m *mockStatsService) CollectForUser(ctx context.Context, userID uint) (*stats.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshots[userID], nil
}

// Test Setup
func setupTestHandler() (*Handler, *mockBadgeService, *mockStatsService, *mockProgressionService) {
	badgeService := newMockBadgeService()
	statsService := newMockStatsService()
	progressionService := newMockProgressionService()
	log := logger.New("debug", "text", "stdout")

	handler := NewHandlerWithInterfaces(badgeService, statsService, progressionService, log)

	return handler, badgeService, statsService, progressionService
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

// Tests

func TestEvaluateUser_Success(t *testing.T) {
	handler, badgeService, _, progressionService := setupTestHandler()
	router := setupRouter(handler)

	badgeService.newlyAwarded[1] = []models.Badge{
		{ID: 1, Name: "first_steps", Icon: "footsteps", XPBonus: 10, Rarity: "common"},
	}

	body := strings.NewReader(`{"trigger": "module_completed", "module_id": 7}`)
	req, _ := http.NewRequest("POST", "/api/v1/users/1/evaluate", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	assert.Equal(t, float64(1), response["count"])
	awarded, ok := response["newly_awarded"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, awarded, 1)

	first, ok := awarded[0].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "first_steps", first["name"])
	assert.Equal(t, float64(10), first["xp_bonus"])

	assert.Equal(t, []uint{7}, progressionService.moduleGrants[1])
}

func TestEvaluateUser_LoginTrigger(t *testing.T) {
	handler, _, _, progressionService := setupTestHandler()
	router := setupRouter(handler)

	body := strings.NewReader(`{"trigger": "login"}`)
	req, _ := http.NewRequest("POST", "/api/v1/users/1/evaluate", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uint{1}, progressionService.logins)
}

func TestEvaluateUser_UnknownTrigger(t *testing.T) {
	handler, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	body := strings.NewReader(`{"trigger": "mystery_event"}`)
	req, _ := http.NewRequest("POST", "/api/v1/users/1/evaluate", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateUser_ModuleTriggerWithoutID(t *testing.T) {
	handler, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	body := strings.NewReader(`{"trigger": "module_completed"}`)
	req, _ := http.NewRequest("POST", "/api/v1/users/1/evaluate", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateUser_TriggerGrantFailure(t *testing.T) {
	handler, _, _, progressionService := setupTestHandler()
	router := setupRouter(handler)

	progressionService.err = errors.New("database down")

	body := strings.NewReader(`{"trigger": "goal_completed"}`)
	req, _ := http.NewRequest("POST", "/api/v1/users/1/evaluate", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestEvaluateUser_NoBody(t *testing.T) {
	handler, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("POST", "/api/v1/users/1/evaluate", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(0), response["count"])
}

func TestEvaluateUser_InvalidID(t *testing.T) {
	handler, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("POST", "/api/v1/users/abc/evaluate", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateUser_UserNotFound(t *testing.T) {
	handler, badgeService, _, _ := setupTestHandler()
	router := setupRouter(handler)

	badgeService.evaluateErr = badges.ErrUserNotFound

	req, _ := http.NewRequest("POST", "/api/v1/users/42/evaluate", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserBadges_Success(t *testing.T) {
	handler, badgeService, _, _ := setupTestHandler()
	router := setupRouter(handler)

	badgeService.userBadges[1] = []models.UserBadge{
		{ID: 1, UserID: 1, BadgeID: 1, AwardedAt: time.Now(), Badge: models.Badge{Name: "first_steps"}},
	}

	req, _ := http.NewRequest("GET", "/api/v1/users/1/badges", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(1), response["count"])
}

func TestGetUserBadges_Empty(t *testing.T) {
	handler, _, _, _ := setupTestHandler()
	router := setupRouter(handler)

	req, _ := http.NewRequest("GET", "/api/v1/users/99/badges", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(0), response["count"])
}

func TestGetUserStats_Success(t *testing.T) {
	handler, _, statsService, _ := setupTestHandler()
	router := setupRouter(handler)

	statsService.snapshots[1] = &stats.Snapshot{
		ModulesCompleted:         5,
		LoginStreak:              7,
		ConsecutiveSavingsMonths: 3,
	}

	req, _ := http.NewRequest("GET", "/api/v1/users/1/stats", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)

	snapshot, ok := response["stats"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, float64(5), snapshot["modules_completed"])
	assert.Equal(t, float64(3), snapshot["consecutive_savings_months"])
}

func TestGetBadgeCatalog_Success(t *testing.T) {
	handler, badgeService, _, _ := setupTestHandler()
	router := setupRouter(handler)

	badgeService.catalog = []models.Badge{
		{ID: 1, Name: "first_steps"},
		{ID: 2, Name: "budget_builder"},
	}

	req, _ := http.NewRequest("GET", "/api/v1/badges", http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, float64(2), response["count"])
}
