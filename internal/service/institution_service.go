package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/tenant"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

type institutionRepository interface {
	List(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, int, error)
	FindByID(ctx context.Context, id string) (*models.Institution, error)
	Update(ctx context.Context, institution *models.Institution) error
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
}

// UpdateInstitutionRequest holds the tenant-editable account settings.
type UpdateInstitutionRequest struct {
	Name           *string `json:"name"`
	EnrollmentGoal *int    `json:"enrollment_goal"`
}

// SubscriptionStatus is the tenant-facing view of the subscription.
type SubscriptionStatus struct {
	State            models.AccessState `json:"state"`
	TrialDaysLeft    int                `json:"trial_days_left"`
	TrialExpiryDate  time.Time          `json:"trial_expiry_date"`
	HasPaymentMethod bool               `json:"has_payment_method"`
}

// InstitutionService covers tenant account settings, subscription state and
// the operator admin panel.
type InstitutionService struct {
	repo       institutionRepository
	cache      candidateCacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
	extendDays int
	now        func() time.Time
}

// NewInstitutionService constructs the institution service. extendDays is the
// trial extension granted per admin action.
func NewInstitutionService(repo institutionRepository, cache candidateCacheInvalidator, validate *validator.Validate, logger *zap.Logger, extendDays int) *InstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if extendDays <= 0 {
		extendDays = 30
	}
	return &InstitutionService{
		repo:       repo,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		extendDays: extendDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the institution's own account record.
func (s *InstitutionService) Get(ctx context.Context, institutionID string) (*models.Institution, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	return s.load(ctx, institutionID)
}

// Update applies tenant-editable settings.
func (s *InstitutionService) Update(ctx context.Context, institutionID string, req UpdateInstitutionRequest) (*models.Institution, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	institution, err := s.load(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "name must not be empty")
		}
		institution.Name = *req.Name
	}
	if req.EnrollmentGoal != nil {
		if *req.EnrollmentGoal < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "enrollment goal must not be negative")
		}
		institution.EnrollmentGoal = req.EnrollmentGoal
	}
	institution.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update institution")
	}
	return institution, nil
}

// Subscription returns the tenant-facing subscription status.
func (s *InstitutionService) Subscription(ctx context.Context, institutionID string) (*SubscriptionStatus, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	institution, err := s.load(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &SubscriptionStatus{
		State:            institution.AccessState(now),
		TrialDaysLeft:    institution.TrialDaysRemaining(now),
		TrialExpiryDate:  institution.TrialExpiryDate,
		HasPaymentMethod: institution.HasPayment,
	}, nil
}

// AddPaymentMethod marks the institution as paying. Billing settlement lives
// outside this system; the flag is what gates access.
func (s *InstitutionService) AddPaymentMethod(ctx context.Context, institutionID string) (*models.Institution, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}
	institution, err := s.load(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	institution.HasPayment = true
	institution.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update institution")
	}
	s.logger.Info("payment method added", zap.String("institution_id", institutionID))
	return institution, nil
}

// AdminList returns institutions for the operator panel.
func (s *InstitutionService) AdminList(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, *models.Pagination, error) {
	institutions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list institutions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return institutions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ExtendTrial pushes an institution's trial expiry out by the given number of
// days, falling back to the configured grant when days is zero. Extensions
// stack from the current expiry, never from now, so repeated grants
// accumulate.
func (s *InstitutionService) ExtendTrial(ctx context.Context, institutionID string, days int) (*models.Institution, error) {
	if days < 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "days must be positive")
	}
	if days == 0 {
		days = s.extendDays
	}
	institution, err := s.load(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	extended := institution.ExtendTrial(days)
	extended.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, &extended); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to extend trial")
	}
	if s.cache != nil {
		s.cache.InvalidateInstitution(ctx, institutionID)
	}
	s.logger.Info("trial extended",
		zap.String("institution_id", institutionID),
		zap.Int("days", days),
		zap.Time("new_expiry", extended.TrialExpiryDate))
	return &extended, nil
}

// SetActive toggles an institution on or off. Institutions are never
// hard-deleted.
func (s *InstitutionService) SetActive(ctx context.Context, institutionID string, active bool) (*models.Institution, error) {
	institution, err := s.load(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	institution.Active = active
	institution.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update institution")
	}
	if s.cache != nil {
		s.cache.InvalidateInstitution(ctx, institutionID)
	}
	return institution, nil
}

// PlatformStats summarises the whole platform for operators.
func (s *InstitutionService) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	out, err := s.repo.PlatformStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute platform stats")
	}
	return out, nil
}

func (s *InstitutionService) load(ctx context.Context, institutionID string) (*models.Institution, error) {
	institution, err := s.repo.FindByID(ctx, institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	return institution, nil
}
