package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shavuson/recruit-api/internal/middleware"
	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/service"
)

type memoryInstitutionRepo struct {
	byID map[string]*models.Institution
}

func (m *memoryInstitutionRepo) List(context.Context, models.InstitutionFilter) ([]models.Institution, int, error) {
	out := make([]models.Institution, 0, len(m.byID))
	for _, inst := range m.byID {
		out = append(out, *inst)
	}
	return out, len(out), nil
}

func (m *memoryInstitutionRepo) FindByID(_ context.Context, id string) (*models.Institution, error) {
	inst, ok := m.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *inst
	return &copy, nil
}

func (m *memoryInstitutionRepo) Update(_ context.Context, inst *models.Institution) error {
	m.byID[inst.ID] = inst
	return nil
}

func (m *memoryInstitutionRepo) PlatformStats(context.Context) (*models.PlatformStats, error) {
	return &models.PlatformStats{TotalInstitutions: len(m.byID)}, nil
}

func adminTestRouter(repo *memoryInstitutionRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAdminHandler(service.NewInstitutionService(repo, nil, nil, nil, 30))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: models.RoleSuperAdmin})
		c.Next()
	})
	router.POST("/admin/institutions/:id/extend-trial", handler.ExtendTrial)
	return router
}

func TestAdminHandlerExtendTrialCustomDays(t *testing.T) {
	expiry := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := &memoryInstitutionRepo{byID: map[string]*models.Institution{
		"inst-1": {ID: "inst-1", TrialExpiryDate: expiry},
	}}
	router := adminTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/institutions/inst-1/extend-trial", strings.NewReader(`{"days":7}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, expiry.AddDate(0, 0, 7), repo.byID["inst-1"].TrialExpiryDate)
}

func TestAdminHandlerExtendTrialDefaultsWithoutBody(t *testing.T) {
	expiry := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	repo := &memoryInstitutionRepo{byID: map[string]*models.Institution{
		"inst-1": {ID: "inst-1", TrialExpiryDate: expiry},
	}}
	router := adminTestRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/institutions/inst-1/extend-trial", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, expiry.AddDate(0, 0, 30), repo.byID["inst-1"].TrialExpiryDate)
}

func TestAdminHandlerExtendTrialRejectsNegativeDays(t *testing.T) {
	repo := &memoryInstitutionRepo{byID: map[string]*models.Institution{
		"inst-1": {ID: "inst-1"},
	}}
	router := adminTestRouter(repo)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/institutions/inst-1/extend-trial", strings.NewReader(`{"days":-3}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
