package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/stats"
	"github.com/shavuson/recruit-api/internal/tenant"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
	"github.com/shavuson/recruit-api/pkg/insights"
)

type insightsGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type insightsCandidateRepository interface {
	FindByID(ctx context.Context, institutionID, id string) (*models.Candidate, error)
	ListAll(ctx context.Context, institutionID string) ([]models.Candidate, error)
}

type insightsInteractionRepository interface {
	ListByCandidate(ctx context.Context, institutionID, candidateID string) ([]models.Interaction, error)
	ListRecent(ctx context.Context, institutionID string, limit int) ([]models.Interaction, error)
}

const recentInteractionLimit = 20

const (
	leadAnalysisSystem = "You are an expert recruitment consultant for educational institutions (Yeshivot). Analyze lead quality and provide actionable insights."
	managementSystem   = "You are a senior educational consultant. Provide high-level management insights."
)

// LeadAnalysis is the generated assessment of one candidate.
type LeadAnalysis struct {
	CandidateID string    `json:"candidate_id"`
	Analysis    string    `json:"analysis"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ManagementInsights is the generated strategic brief for the institution
// head.
type ManagementInsights struct {
	Insights    string    `json:"insights"`
	GeneratedAt time.Time `json:"generated_at"`
}

// InsightsService produces generative analyses of candidates and of the
// funnel as a whole. The generator is an external model; the service only
// assembles prompts from tenant-scoped data and relays the text back.
type InsightsService struct {
	generator    insightsGenerator
	candidates   insightsCandidateRepository
	interactions insightsInteractionRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewInsightsService constructs the insights service.
func NewInsightsService(generator insightsGenerator, candidates insightsCandidateRepository, interactions insightsInteractionRepository, logger *zap.Logger) *InsightsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InsightsService{
		generator:    generator,
		candidates:   candidates,
		interactions: interactions,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// LeadAnalysis asks the model to assess one candidate's likelihood to enroll,
// grounding the prompt in the candidate's record and contact history.
func (s *InsightsService) LeadAnalysis(ctx context.Context, institutionID, candidateID string) (*LeadAnalysis, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}

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

	history, err := s.interactions.ListByCandidate(ctx, institutionID, candidateID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interactions")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this candidate for a Yeshiva institution and provide a short summary and a score (1-10) on their likelihood to enroll.\n")
	fmt.Fprintf(&b, "Candidate: %s\n", candidate.FullName)
	fmt.Fprintf(&b, "Current School: %s\n", candidate.CurrentYeshiva)
	fmt.Fprintf(&b, "Lead Source: %s\n", candidate.Source)
	fmt.Fprintf(&b, "Current Stage: %s\n\n", candidate.Stage)
	b.WriteString("Recent Interactions:\n")
	for _, i := range history {
		fmt.Fprintf(&b, "- [%s] %s\n", i.Type, i.Summary)
	}
	b.WriteString("\nProvide the response in Hebrew. Format:\nSummary: [Your analysis]\nScore: [X/10]\n")

	text, err := s.generate(ctx, leadAnalysisSystem, b.String())
	if err != nil {
		return nil, err
	}
	return &LeadAnalysis{CandidateID: candidateID, Analysis: text, GeneratedAt: s.now()}, nil
}

// ManagementInsights asks the model for strategic advice over the whole
// funnel: bottlenecks, a success forecast, and actions for the team.
func (s *InsightsService) ManagementInsights(ctx context.Context, institutionID string) (*ManagementInsights, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}

	candidates, err := s.candidates.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to load candidates")
	}
	candidates = tenant.Scope(candidates, institutionID)

	recent, err := s.interactions.ListRecent(ctx, institutionID, recentInteractionLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load interactions")
	}

	funnel := stats.Funnel(candidates)
	stages := make([]string, 0, len(candidates))
	for _, c := range candidates {
		stages = append(stages, string(c.Stage))
	}
	summaries := make([]string, 0, len(recent))
	for _, i := range recent {
		summaries = append(summaries, i.Summary)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Provide 3 strategic insights for the Head of Yeshiva based on this data:\n")
	fmt.Fprintf(&b, "Total Candidates: %d\n", funnel.Total)
	fmt.Fprintf(&b, "Enrolled: %d (conversion %d%%)\n", funnel.Enrolled, funnel.ConversionRate)
	fmt.Fprintf(&b, "Stages: %s\n", strings.Join(stages, ", "))
	fmt.Fprintf(&b, "Recent Interactions: %s\n\n", strings.Join(summaries, " | "))
	b.WriteString("Focus on:\n")
	b.WriteString("1. Identifying bottlenecks in the enrollment funnel.\n")
	b.WriteString("2. Predicting next month's success.\n")
	b.WriteString("3. Actionable advice for the recruitment team.\n\n")
	b.WriteString("Response must be in Hebrew, bullet points, professional tone.\n")

	text, err := s.generate(ctx, managementSystem, b.String())
	if err != nil {
		return nil, err
	}
	return &ManagementInsights{Insights: text, GeneratedAt: s.now()}, nil
}

func (s *InsightsService) generate(ctx context.Context, system, prompt string) (string, error) {
	if s.generator == nil {
		return "", appErrors.Clone(appErrors.ErrRemoteUnavailable, "insights are not configured")
	}
	text, err := s.generator.Generate(ctx, system, prompt)
	if err != nil {
		if errors.Is(err, insights.ErrNotConfigured) {
			return "", appErrors.Clone(appErrors.ErrRemoteUnavailable, "insights are not configured")
		}
		s.logger.Warn("insight generation failed", zap.Error(err))
		return "", appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "insight generation failed")
	}
	return text, nil
}
