package middleware

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/models"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
	"github.com/shavuson/recruit-api/pkg/response"
)

type subscriptionInstitutionFinder interface {
	FindByID(ctx context.Context, id string) (*models.Institution, error)
}

// SubscriptionGate blocks tenant sessions whose access has lapsed. An expired
// unpaid trial yields 402, a deactivated account 403. Operator sessions pass
// untouched so the admin panel stays reachable while a tenant sorts out
// billing.
func SubscriptionGate(institutions subscriptionInstitutionFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if claims.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}
		if claims.InstitutionID == "" {
			response.Error(c, appErrors.ErrMissingTenantContext)
			c.Abort()
			return
		}

		institution, err := institutions.FindByID(c.Request.Context(), claims.InstitutionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				response.Error(c, appErrors.ErrUnauthorized)
			} else {
				response.Error(c, appErrors.ErrInternal)
			}
			c.Abort()
			return
		}

		// Deactivation is checked first so a suspended tenant is told so,
		// not sent to the paywall.
		if institution.AccessState(time.Now().UTC()) == models.AccessExpired {
			if !institution.Active {
				response.Error(c, appErrors.ErrInactiveAccount)
			} else {
				response.Error(c, appErrors.ErrTrialExpired)
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
