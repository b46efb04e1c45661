package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/tenant"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

type interactionRepository interface {
	ListByCandidate(ctx context.Context, institutionID, candidateID string) ([]models.Interaction, error)
	Create(ctx context.Context, interaction *models.Interaction) error
}

type interactionCandidateFinder interface {
	FindByID(ctx context.Context, institutionID, id string) (*models.Candidate, error)
}

// LogInteractionRequest records one contact event for a candidate.
type LogInteractionRequest struct {
	Type      models.InteractionType `json:"type" validate:"required"`
	Summary   string                 `json:"summary" validate:"required"`
	Timestamp *time.Time             `json:"timestamp"`
}

// InteractionService manages the append-only contact log. Interactions are
// never updated or deleted individually; they disappear only with their
// candidate.
type InteractionService struct {
	repo       interactionRepository
	candidates interactionCandidateFinder
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewInteractionService constructs the interaction service.
func NewInteractionService(repo interactionRepository, candidates interactionCandidateFinder, validate *validator.Validate, logger *zap.Logger) *InteractionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{
		repo:       repo,
		candidates: candidates,
		validator:  validate,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List returns the contact log for one candidate, newest first.
func (s *InteractionService) List(ctx context.Context, institutionID, candidateID string) ([]models.Interaction, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	if _, err := s.loadOwnedCandidate(ctx, institutionID, candidateID); err != nil {
		return nil, err
	}
	interactions, err := s.repo.ListByCandidate(ctx, institutionID, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list interactions")
	}
	return interactions, nil
}

// Log appends one interaction to a candidate's history.
func (s *InteractionService) Log(ctx context.Context, institutionID, candidateID string, req LogInteractionRequest) (*models.Interaction, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid interaction payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown interaction type")
	}

	candidate, err := s.loadOwnedCandidate(ctx, institutionID, candidateID)
	if err != nil {
		return nil, err
	}

	ts := s.now()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}

	interaction := &models.Interaction{
		ID:            uuid.NewString(),
		CandidateID:   candidate.ID,
		InstitutionID: candidate.InstitutionID,
		Type:          req.Type,
		Summary:       req.Summary,
		Timestamp:     ts,
	}

	if err := s.repo.Create(ctx, interaction); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record interaction")
	}

	s.logger.Debug("interaction logged",
		zap.String("candidate_id", candidateID),
		zap.String("type", string(req.Type)))
	return interaction, nil
}

func (s *InteractionService) loadOwnedCandidate(ctx context.Context, institutionID, candidateID string) (*models.Candidate, error) {
	candidate, err := s.candidates.FindByID(ctx, institutionID, candidateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	if err := tenant.AssertOwnership(*candidate, institutionID); err != nil {
		return nil, err
	}
	return candidate, nil
}
