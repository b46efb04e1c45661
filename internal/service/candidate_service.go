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

type candidateRepository interface {
	List(ctx context.Context, institutionID string, filter models.CandidateFilter) ([]models.Candidate, int, error)
	FindByID(ctx context.Context, institutionID, id string) (*models.Candidate, error)
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	Delete(ctx context.Context, institutionID, id string) error
}

type candidateCacheInvalidator interface {
	InvalidateInstitution(ctx context.Context, institutionID string)
}

// CreateCandidateRequest holds payload for registering a candidate.
type CreateCandidateRequest struct {
	FullName       string        `json:"full_name" validate:"required"`
	Phone          string        `json:"phone" validate:"required"`
	CurrentYeshiva string        `json:"current_yeshiva"`
	Source         models.Source `json:"source" validate:"required"`
	Photo          *string       `json:"photo"`
}

// UpdateCandidateRequest holds payload for updating a candidate. Pointer
// fields are applied only when present.
type UpdateCandidateRequest struct {
	FullName            *string                `json:"full_name"`
	Phone               *string                `json:"phone"`
	CurrentYeshiva      *string                `json:"current_yeshiva"`
	Source              *models.Source         `json:"source"`
	Stage               *models.Stage          `json:"stage"`
	Status              *models.Status         `json:"status"`
	Photo               *string                `json:"photo"`
	VisitStart          *time.Time             `json:"visit_start"`
	VisitEnd            *time.Time             `json:"visit_end"`
	AssignedHost        *string                `json:"assigned_host"`
	AssignedRoom        *string                `json:"assigned_room"`
	SpecialRequirements *string                `json:"special_requirements"`
	EvaluationScore     *int                   `json:"evaluation_score"`
	InterviewerName     *string                `json:"interviewer_name"`
	InterviewStatus     *models.InterviewState `json:"interview_status"`
}

// CandidateService handles candidate use-cases for one tenant at a time.
type CandidateService struct {
	repo      candidateRepository
	cache     candidateCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCandidateService constructs the candidate service.
func NewCandidateService(repo candidateRepository, cache candidateCacheInvalidator, validate *validator.Validate, logger *zap.Logger) *CandidateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateService{
		repo:      repo,
		cache:     cache,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the institution's candidates and pagination metadata.
func (s *CandidateService) List(ctx context.Context, institutionID string, filter models.CandidateFilter) ([]models.Candidate, *models.Pagination, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, nil, err
	}
	candidates, total, err := s.repo.List(ctx, institutionID, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list candidates")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return candidates, pagination, nil
}

// Get returns one candidate owned by the institution.
func (s *CandidateService) Get(ctx context.Context, institutionID, id string) (*models.Candidate, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	candidate, err := s.repo.FindByID(ctx, institutionID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load candidate")
	}
	return candidate, nil
}

// Create registers a candidate. The record is stamped with the session's
// institution; a client can never choose the owner.
func (s *CandidateService) Create(ctx context.Context, institutionID string, req CreateCandidateRequest) (*models.Candidate, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid candidate payload")
	}
	if !req.Source.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown candidate source")
	}

	now := s.now()
	candidate := &models.Candidate{
		ID:             uuid.NewString(),
		InstitutionID:  institutionID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		CurrentYeshiva: req.CurrentYeshiva,
		Source:         req.Source,
		Stage:          models.StageInitial,
		Status:         models.StatusAccepted,
		Photo:          req.Photo,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create candidate")
	}

	s.invalidate(ctx, institutionID)
	s.logger.Info("candidate created",
		zap.String("candidate_id", candidate.ID),
		zap.String("institution_id", institutionID))
	return candidate, nil
}

// Update applies a partial update to a candidate the institution owns.
func (s *CandidateService) Update(ctx context.Context, institutionID, id string, req UpdateCandidateRequest) (*models.Candidate, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}

	candidate, err := s.Get(ctx, institutionID, id)
	if err != nil {
		return nil, err
	}
	if err := tenant.AssertOwnership(*candidate, institutionID); err != nil {
		return nil, err
	}

	if req.Source != nil {
		if !req.Source.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown candidate source")
		}
		candidate.Source = *req.Source
	}
	if req.Stage != nil {
		if !req.Stage.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown funnel stage")
		}
		candidate.Stage = *req.Stage
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown candidate status")
		}
		candidate.Status = *req.Status
	}
	if req.FullName != nil {
		candidate.FullName = *req.FullName
	}
	if req.Phone != nil {
		candidate.Phone = *req.Phone
	}
	if req.CurrentYeshiva != nil {
		candidate.CurrentYeshiva = *req.CurrentYeshiva
	}
	if req.Photo != nil {
		candidate.Photo = req.Photo
	}
	if req.VisitStart != nil {
		candidate.VisitStart = req.VisitStart
	}
	if req.VisitEnd != nil {
		candidate.VisitEnd = req.VisitEnd
	}
	if req.AssignedHost != nil {
		candidate.AssignedHost = req.AssignedHost
	}
	if req.AssignedRoom != nil {
		candidate.AssignedRoom = req.AssignedRoom
	}
	if req.SpecialRequirements != nil {
		candidate.SpecialRequirements = req.SpecialRequirements
	}
	if req.EvaluationScore != nil {
		candidate.EvaluationScore = req.EvaluationScore
	}
	if req.InterviewerName != nil {
		candidate.InterviewerName = req.InterviewerName
	}
	if req.InterviewStatus != nil {
		if !req.InterviewStatus.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown interview status")
		}
		candidate.InterviewStatus = req.InterviewStatus
	}
	candidate.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, candidate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrTenantMismatch, "record belongs to another institution")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update candidate")
	}

	s.invalidate(ctx, institutionID)
	return candidate, nil
}

// SetStage moves a candidate to another funnel stage.
func (s *CandidateService) SetStage(ctx context.Context, institutionID, id string, stage models.Stage) (*models.Candidate, error) {
	if !stage.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown funnel stage")
	}
	return s.Update(ctx, institutionID, id, UpdateCandidateRequest{Stage: &stage})
}

// QuickEnroll marks a candidate enrolled and closes its funnel stage in one
// step.
func (s *CandidateService) QuickEnroll(ctx context.Context, institutionID, id string) (*models.Candidate, error) {
	status := models.StatusEnrolled
	stage := models.StageClosed
	candidate, err := s.Update(ctx, institutionID, id, UpdateCandidateRequest{Status: &status, Stage: &stage})
	if err != nil {
		return nil, err
	}
	s.logger.Info("candidate enrolled",
		zap.String("candidate_id", id),
		zap.String("institution_id", institutionID))
	return candidate, nil
}

// Delete removes a candidate and its interaction log.
func (s *CandidateService) Delete(ctx context.Context, institutionID, id string) error {
	if err := tenant.Require(institutionID); err != nil {
		return err
	}
	candidate, err := s.Get(ctx, institutionID, id)
	if err != nil {
		return err
	}
	if err := tenant.AssertOwnership(*candidate, institutionID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, institutionID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "candidate not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete candidate")
	}
	s.invalidate(ctx, institutionID)
	return nil
}

func (s *CandidateService) invalidate(ctx context.Context, institutionID string) {
	if s.cache != nil {
		s.cache.InvalidateInstitution(ctx, institutionID)
	}
}
