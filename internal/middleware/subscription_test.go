package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/models"
)

type stubInstitutionFinder struct {
	institution *models.Institution
	err         error
}

func (s *stubInstitutionFinder) FindByID(context.Context, string) (*models.Institution, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.institution, nil
}

func gateRouter(finder *stubInstitutionFinder, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(ContextUserKey, claims)
		}
		c.Next()
	})
	router.Use(SubscriptionGate(finder))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestSubscriptionGateAllowsActiveTrial(t *testing.T) {
	finder := &stubInstitutionFinder{institution: &models.Institution{
		ID:              "inst-1",
		Active:          true,
		TrialExpiryDate: time.Now().Add(48 * time.Hour),
	}}
	router := gateRouter(finder, &models.JWTClaims{InstitutionID: "inst-1", Role: models.RoleInstitution})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestSubscriptionGateBlocksExpiredTrial(t *testing.T) {
	finder := &stubInstitutionFinder{institution: &models.Institution{
		ID:              "inst-1",
		Active:          true,
		HasPayment:      false,
		TrialExpiryDate: time.Now().Add(-24 * time.Hour),
	}}
	router := gateRouter(finder, &models.JWTClaims{InstitutionID: "inst-1", Role: models.RoleInstitution})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", recorder.Code)
	}
}

func TestSubscriptionGateBlocksDeactivatedPaidAccount(t *testing.T) {
	finder := &stubInstitutionFinder{institution: &models.Institution{
		ID:              "inst-1",
		Active:          false,
		HasPayment:      true,
		TrialExpiryDate: time.Now().Add(-24 * time.Hour),
	}}
	router := gateRouter(finder, &models.JWTClaims{InstitutionID: "inst-1", Role: models.RoleInstitution})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestSubscriptionGateBlocksDeactivatedTrialAsInactive(t *testing.T) {
	// Suspended mid-trial and unpaid. The answer must name deactivation,
	// not the paywall.
	finder := &stubInstitutionFinder{institution: &models.Institution{
		ID:              "inst-1",
		Active:          false,
		HasPayment:      false,
		TrialExpiryDate: time.Now().Add(48 * time.Hour),
	}}
	router := gateRouter(finder, &models.JWTClaims{InstitutionID: "inst-1", Role: models.RoleInstitution})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
}

func TestSubscriptionGatePassesOperators(t *testing.T) {
	finder := &stubInstitutionFinder{err: sql.ErrNoRows}
	router := gateRouter(finder, &models.JWTClaims{Role: models.RoleSuperAdmin})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestSubscriptionGateRequiresTenantScope(t *testing.T) {
	finder := &stubInstitutionFinder{}
	router := gateRouter(finder, &models.JWTClaims{Role: models.RoleInstitution})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", recorder.Code)
	}
}

func TestSubscriptionGateRejectsAnonymous(t *testing.T) {
	router := gateRouter(&stubInstitutionFinder{}, nil)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}
