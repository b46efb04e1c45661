package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/stats"
	"github.com/shavuson/recruit-api/internal/tenant"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

type dashboardCandidateRepository interface {
	ListAll(ctx context.Context, institutionID string) ([]models.Candidate, error)
}

type dashboardInstitutionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Institution, error)
}

// DashboardOverview is the aggregate behind the landing view.
type DashboardOverview struct {
	Funnel         stats.FunnelStats       `json:"funnel"`
	Stages         stats.StageBuckets      `json:"stages"`
	Sources        []stats.SourceBreakdown `json:"sources"`
	TrialDaysLeft  int                     `json:"trial_days_left"`
	EnrollmentGoal *int                    `json:"enrollment_goal,omitempty"`
	GeneratedAt    time.Time               `json:"generated_at"`
}

// FunnelBreakdown is the funnel slice of the overview.
type FunnelBreakdown struct {
	Funnel  stats.FunnelStats       `json:"funnel"`
	Sources []stats.SourceBreakdown `json:"sources"`
}

// DashboardService aggregates per-tenant candidate data for the landing view.
// Aggregates are cached per institution and invalidated on any candidate
// write.
type DashboardService struct {
	candidates   dashboardCandidateRepository
	institutions dashboardInstitutionRepository
	cache        *CacheService
	ttl          time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(candidates dashboardCandidateRepository, institutions dashboardInstitutionRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		candidates:   candidates,
		institutions: institutions,
		cache:        cache,
		ttl:          ttl,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Overview returns the cached dashboard aggregate for one institution,
// computing and caching it on miss.
func (s *DashboardService) Overview(ctx context.Context, institutionID string) (*DashboardOverview, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}

	key := DashboardKey(institutionID)
	if s.cache != nil {
		var cached DashboardOverview
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("dashboard cache lookup failed", zap.Error(err))
		}
	}

	overview, err := s.build(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, overview, s.ttl); err != nil {
			s.logger.Warn("dashboard cache store failed", zap.Error(err))
		}
	}
	return overview, nil
}

// Funnel returns the funnel slice of the overview. It shares Overview's
// cache entry so both always agree.
func (s *DashboardService) Funnel(ctx context.Context, institutionID string) (*FunnelBreakdown, error) {
	overview, err := s.Overview(ctx, institutionID)
	if err != nil {
		return nil, err
	}
	return &FunnelBreakdown{Funnel: overview.Funnel, Sources: overview.Sources}, nil
}

func (s *DashboardService) build(ctx context.Context, institutionID string) (*DashboardOverview, error) {
	candidates, err := s.scopedCandidates(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	institution, err := s.institutions.FindByID(ctx, institutionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}

	return &DashboardOverview{
		Funnel:         stats.Funnel(candidates),
		Stages:         stats.ByStage(candidates),
		Sources:        stats.BySource(candidates),
		TrialDaysLeft:  institution.TrialDaysRemaining(s.now()),
		EnrollmentGoal: institution.EnrollmentGoal,
		GeneratedAt:    s.now(),
	}, nil
}

func (s *DashboardService) scopedCandidates(ctx context.Context, institutionID string) ([]models.Candidate, error) {
	candidates, err := s.candidates.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to load candidates")
	}
	// Repository queries are scoped already; the filter is a second fence in
	// case a future query forgets its WHERE clause.
	return tenant.Scope(candidates, institutionID), nil
}
