package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/middleware"
	"github.com/shavuson/recruit-api/internal/models"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// institutionFromContext returns the tenant scope of the session, empty for
// operators and anonymous requests.
func institutionFromContext(c *gin.Context) string {
	claims := claimsFromContext(c)
	if claims == nil {
		return ""
	}
	return claims.InstitutionID
}

// bindError maps a JSON binding failure onto the API error contract. A
// timestamp that fails RFC 3339 parsing is reported as a date format problem,
// never coerced and never lumped into the generic validation error.
func bindError(err error) *appErrors.Error {
	var parseErr *time.ParseError
	if errors.As(err, &parseErr) || strings.Contains(err.Error(), "parsing time") {
		return appErrors.Wrap(err, appErrors.ErrInvalidDateFormat.Code, appErrors.ErrInvalidDateFormat.Status, "timestamps must be RFC 3339")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
}
