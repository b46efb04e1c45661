package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shavuson/recruit-api/internal/models"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

func TestRequireRejectsEmptyScope(t *testing.T) {
	require.NoError(t, Require("inst-1"))
	assert.ErrorIs(t, Require(""), appErrors.ErrMissingTenantContext)
}

func TestScopeFiltersAndPreservesOrder(t *testing.T) {
	records := []models.Candidate{
		{ID: "c1", InstitutionID: "A"},
		{ID: "c2", InstitutionID: "B"},
		{ID: "c3", InstitutionID: "A"},
		{ID: "c4", InstitutionID: "B"},
		{ID: "c5", InstitutionID: "A"},
	}

	scoped := Scope(records, "A")
	require.Len(t, scoped, 3)
	assert.Equal(t, "c1", scoped[0].ID)
	assert.Equal(t, "c3", scoped[1].ID)
	assert.Equal(t, "c5", scoped[2].ID)
	for _, c := range scoped {
		assert.Equal(t, "A", c.InstitutionID)
	}

	// input untouched
	assert.Len(t, records, 5)
	assert.Equal(t, "B", records[1].InstitutionID)
}

func TestScopeIsIdempotent(t *testing.T) {
	records := []models.Interaction{
		{ID: "i1", InstitutionID: "A"},
		{ID: "i2", InstitutionID: "B"},
		{ID: "i3", InstitutionID: "A"},
	}

	once := Scope(records, "A")
	twice := Scope(once, "A")
	assert.Equal(t, once, twice)
}

func TestScopeEmptyInput(t *testing.T) {
	assert.Empty(t, Scope([]models.Candidate{}, "A"))
	assert.Empty(t, Scope([]models.Candidate(nil), "A"))
}

func TestAssertOwnership(t *testing.T) {
	c := models.Candidate{ID: "c1", InstitutionID: "A"}

	require.NoError(t, AssertOwnership(c, "A"))
	assert.ErrorIs(t, AssertOwnership(c, "B"), appErrors.ErrTenantMismatch)
	assert.ErrorIs(t, AssertOwnership(c, ""), appErrors.ErrMissingTenantContext)
}
