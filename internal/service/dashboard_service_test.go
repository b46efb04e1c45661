package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shavuson/recruit-api/internal/models"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

func dashboardFixture() (*fakeRoster, *fakeInstitutionRepo) {
	roster := &fakeRoster{candidates: []models.Candidate{
		{ID: "c-1", InstitutionID: "inst-1", Stage: models.StageDecision, Status: models.StatusAccepted},
		{ID: "c-2", InstitutionID: "inst-1", Stage: models.StageVisiting, Status: models.StatusAccepted},
		{ID: "c-3", InstitutionID: "inst-1", Stage: models.StageInitial, Status: models.StatusEnrolled},
	}}
	goal := 20
	institutions := &fakeInstitutionRepo{byID: map[string]*models.Institution{
		"inst-1": {
			ID:              "inst-1",
			TrialExpiryDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			EnrollmentGoal:  &goal,
		},
	}}
	return roster, institutions
}

func TestDashboardServiceOverview(t *testing.T) {
	roster, institutions := dashboardFixture()
	svc := NewDashboardService(roster, institutions, nil, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }

	overview, err := svc.Overview(context.Background(), "inst-1")
	require.NoError(t, err)

	assert.Equal(t, 3, overview.Funnel.Total)
	assert.Equal(t, 1, overview.Funnel.Enrolled)
	require.Len(t, overview.Stages.Urgent, 1)
	assert.Equal(t, "c-1", overview.Stages.Urgent[0].ID)
	require.Len(t, overview.Stages.Visiting, 1)
	assert.Equal(t, "c-2", overview.Stages.Visiting[0].ID)
	assert.Equal(t, 5, overview.TrialDaysLeft)
	require.NotNil(t, overview.EnrollmentGoal)
	assert.Equal(t, 20, *overview.EnrollmentGoal)
}

func TestDashboardServiceOverviewRequiresTenant(t *testing.T) {
	roster, institutions := dashboardFixture()
	svc := NewDashboardService(roster, institutions, nil, time.Minute, nil)

	_, err := svc.Overview(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMissingTenantContext))
}

func TestDashboardServiceOverviewStoreUnavailable(t *testing.T) {
	_, institutions := dashboardFixture()
	svc := NewDashboardService(&fakeRoster{err: errors.New("connection refused")}, institutions, nil, time.Minute, nil)

	_, err := svc.Overview(context.Background(), "inst-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRemoteUnavailable))
}

func TestDashboardServiceFunnel(t *testing.T) {
	roster, institutions := dashboardFixture()
	svc := NewDashboardService(roster, institutions, nil, time.Minute, nil)

	breakdown, err := svc.Funnel(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, 3, breakdown.Funnel.Total)
	assert.Equal(t, 3, breakdown.Funnel.Accepted)
	assert.Equal(t, 33, breakdown.Funnel.ConversionRate)
	assert.NotEmpty(t, breakdown.Sources)
}

func TestDashboardServiceScopesForeignRecords(t *testing.T) {
	roster, institutions := dashboardFixture()
	roster.candidates = append(roster.candidates, models.Candidate{
		ID: "c-foreign", InstitutionID: "inst-2", Stage: models.StageDecision, Status: models.StatusEnrolled,
	})
	svc := NewDashboardService(roster, institutions, nil, time.Minute, nil)

	overview, err := svc.Overview(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, 3, overview.Funnel.Total)
	require.Len(t, overview.Stages.Urgent, 1)
}
