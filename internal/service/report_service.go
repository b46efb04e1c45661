package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/stats"
	"github.com/shavuson/recruit-api/internal/tenant"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
	"github.com/shavuson/recruit-api/pkg/export"
)

// ExportFormat selects the report download encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ParseExportFormat validates a format query value.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(raw)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

// ConversionReport is the full reporting aggregate for one institution.
type ConversionReport struct {
	Funnel      stats.FunnelStats       `json:"funnel"`
	Sources     []stats.SourceBreakdown `json:"sources"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// ExportResult is a rendered report download.
type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService computes conversion reports and renders candidate exports.
type ReportService struct {
	candidates dashboardCandidateRepository
	cache      *CacheService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	ttl        time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewReportService constructs the report service.
func NewReportService(candidates dashboardCandidateRepository, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportService{
		candidates: candidates,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		ttl:        ttl,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Conversion returns the cached funnel and source report for one tenant.
func (s *ReportService) Conversion(ctx context.Context, institutionID string) (*ConversionReport, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}

	key := ReportKey(institutionID)
	if s.cache != nil {
		var cached ConversionReport
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("report cache lookup failed", zap.Error(err))
		}
	}

	candidates, err := s.scopedCandidates(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	report := &ConversionReport{
		Funnel:      stats.Funnel(candidates),
		Sources:     stats.BySource(candidates),
		GeneratedAt: s.now(),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, report, s.ttl); err != nil {
			s.logger.Warn("report cache store failed", zap.Error(err))
		}
	}
	return report, nil
}

// ExportCandidates renders the institution's candidate roster in the
// requested format. Exports are synchronous; rosters stay small enough that
// buffering the file is fine.
func (s *ReportService) ExportCandidates(ctx context.Context, institutionID string, format ExportFormat) (*ExportResult, error) {
	if err := tenant.Require(institutionID); err != nil {
		return nil, err
	}

	candidates, err := s.scopedCandidates(ctx, institutionID)
	if err != nil {
		return nil, err
	}

	dataset := candidateDataset(candidates)
	stamp := s.now().Format("2006-01-02")

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("candidates-%s.csv", stamp),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case FormatPDF:
		funnel := stats.Funnel(candidates)
		summary := []string{
			fmt.Sprintf("Candidates: %d", funnel.Total),
			fmt.Sprintf("Accepted: %d", funnel.Accepted),
			fmt.Sprintf("Enrolled: %d", funnel.Enrolled),
			fmt.Sprintf("Conversion rate: %d%%", funnel.ConversionRate),
		}
		content, err := s.pdf.Render(dataset, "Candidate Report", summary)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("candidates-%s.pdf", stamp),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
}

func (s *ReportService) scopedCandidates(ctx context.Context, institutionID string) ([]models.Candidate, error) {
	candidates, err := s.candidates.ListAll(ctx, institutionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRemoteUnavailable.Code, appErrors.ErrRemoteUnavailable.Status, "failed to load candidates")
	}
	return tenant.Scope(candidates, institutionID), nil
}

func candidateDataset(candidates []models.Candidate) export.Dataset {
	headers := []string{"Name", "Phone", "Yeshiva", "Source", "Stage", "Status", "Score", "Created"}
	rows := make([]map[string]string, 0, len(candidates))
	for _, c := range candidates {
		score := ""
		if c.EvaluationScore != nil {
			score = strconv.Itoa(*c.EvaluationScore)
		}
		rows = append(rows, map[string]string{
			"Name":    c.FullName,
			"Phone":   c.Phone,
			"Yeshiva": c.CurrentYeshiva,
			"Source":  string(c.Source),
			"Stage":   string(c.Stage),
			"Status":  string(c.Status),
			"Score":   score,
			"Created": c.CreatedAt.Format("2006-01-02"),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
