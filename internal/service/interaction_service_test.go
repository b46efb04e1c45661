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

type fakeInteractionRepo struct {
	byCandidate map[string][]models.Interaction
	created     *models.Interaction
}

func (f *fakeInteractionRepo) ListByCandidate(_ context.Context, _, candidateID string) ([]models.Interaction, error) {
	return f.byCandidate[candidateID], nil
}

func (f *fakeInteractionRepo) Create(_ context.Context, interaction *models.Interaction) error {
	f.created = interaction
	return nil
}

func TestInteractionServiceLog(t *testing.T) {
	candidates := &fakeCandidateRepo{byID: map[string]*models.Candidate{
		"c-1": {ID: "c-1", InstitutionID: "inst-1"},
	}}
	repo := &fakeInteractionRepo{}
	svc := NewInteractionService(repo, candidates, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC) }

	logged, err := svc.Log(context.Background(), "inst-1", "c-1", LogInteractionRequest{
		Type:    models.InteractionPhone,
		Summary: "Discussed visit dates",
	})
	require.NoError(t, err)

	assert.Equal(t, "c-1", logged.CandidateID)
	assert.Equal(t, "inst-1", logged.InstitutionID)
	assert.Equal(t, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), logged.Timestamp)
	require.NotNil(t, repo.created)
}

func TestInteractionServiceLogForeignCandidate(t *testing.T) {
	candidates := &fakeCandidateRepo{byID: map[string]*models.Candidate{
		"c-1": {ID: "c-1", InstitutionID: "inst-2"},
	}}
	svc := NewInteractionService(&fakeInteractionRepo{}, candidates, nil, nil)

	_, err := svc.Log(context.Background(), "inst-1", "c-1", LogInteractionRequest{
		Type:    models.InteractionEmail,
		Summary: "Follow up",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestInteractionServiceLogUnknownType(t *testing.T) {
	candidates := &fakeCandidateRepo{byID: map[string]*models.Candidate{
		"c-1": {ID: "c-1", InstitutionID: "inst-1"},
	}}
	svc := NewInteractionService(&fakeInteractionRepo{}, candidates, nil, nil)

	_, err := svc.Log(context.Background(), "inst-1", "c-1", LogInteractionRequest{
		Type:    models.InteractionType("FAX"),
		Summary: "Sent brochure",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestInteractionServiceList(t *testing.T) {
	candidates := &fakeCandidateRepo{byID: map[string]*models.Candidate{
		"c-1": {ID: "c-1", InstitutionID: "inst-1"},
	}}
	repo := &fakeInteractionRepo{byCandidate: map[string][]models.Interaction{
		"c-1": {
			{ID: "i-1", CandidateID: "c-1", InstitutionID: "inst-1", Type: models.InteractionMeeting},
		},
	}}
	svc := NewInteractionService(repo, candidates, nil, nil)

	interactions, err := svc.List(context.Background(), "inst-1", "c-1")
	require.NoError(t, err)
	require.Len(t, interactions, 1)
	assert.Equal(t, models.InteractionMeeting, interactions[0].Type)
}

func TestInteractionServiceListRequiresTenant(t *testing.T) {
	svc := NewInteractionService(&fakeInteractionRepo{}, &fakeCandidateRepo{}, nil, nil)

	_, err := svc.List(context.Background(), "", "c-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMissingTenantContext))
}
