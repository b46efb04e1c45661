package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shavuson/recruit-api/internal/middleware"
	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/service"
)

type memoryRoster struct {
	candidates []models.Candidate
}

func (m *memoryRoster) ListAll(context.Context, string) ([]models.Candidate, error) {
	return m.candidates, nil
}

func reportTestRouter(roster *memoryRoster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(service.NewReportService(roster, nil, time.Minute, nil))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{
			InstitutionID: "inst-1",
			Role:          models.RoleInstitution,
		})
		c.Next()
	})
	router.GET("/reports/conversion", handler.Conversion)
	router.GET("/reports/candidates", handler.ExportCandidates)
	return router
}

func testRoster() *memoryRoster {
	return &memoryRoster{candidates: []models.Candidate{
		{ID: "c-1", InstitutionID: "inst-1", FullName: "Levi Katz", Source: models.SourceAd, Status: models.StatusEnrolled, Stage: models.StageClosed},
		{ID: "c-2", InstitutionID: "inst-1", FullName: "Dov Stern", Source: models.SourceAd, Status: models.StatusAccepted, Stage: models.StageVisiting},
	}}
}

func TestReportHandlerConversion(t *testing.T) {
	router := reportTestRouter(testRoster())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/conversion", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"conversion_rate":50`)
}

func TestReportHandlerExportCSV(t *testing.T) {
	router := reportTestRouter(testRoster())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/candidates?format=csv", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "Levi Katz")
}

func TestReportHandlerExportPDF(t *testing.T) {
	router := reportTestRouter(testRoster())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/candidates?format=pdf", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, len(rec.Body.Bytes()) > 0)
}

func TestReportHandlerExportUnknownFormat(t *testing.T) {
	router := reportTestRouter(testRoster())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/candidates?format=xlsx", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
