package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shavuson/recruit-api/internal/models"
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

type fakeRoster struct {
	candidates []models.Candidate
	err        error
}

func (f *fakeRoster) ListAll(context.Context, string) ([]models.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func rosterOf(institutionID string) *fakeRoster {
	return &fakeRoster{candidates: []models.Candidate{
		{ID: "c-1", InstitutionID: institutionID, FullName: "Levi Katz", Source: models.SourceFriend, Stage: models.StageDecision, Status: models.StatusEnrolled, CreatedAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{ID: "c-2", InstitutionID: institutionID, FullName: "Dov Stern", Source: models.SourceFriend, Stage: models.StageVisiting, Status: models.StatusAccepted, CreatedAt: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)},
		{ID: "c-3", InstitutionID: institutionID, FullName: "Aryeh Gold", Source: models.SourceGraduate, Stage: models.StageInitial, Status: models.StatusAccepted, CreatedAt: time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)},
	}}
}

func TestParseExportFormat(t *testing.T) {
	format, err := ParseExportFormat("CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	_, err = ParseExportFormat("xlsx")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReportServiceConversion(t *testing.T) {
	svc := NewReportService(rosterOf("inst-1"), nil, time.Minute, nil)

	report, err := svc.Conversion(context.Background(), "inst-1")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Funnel.Total)
	assert.Equal(t, 3, report.Funnel.Accepted)
	assert.Equal(t, 1, report.Funnel.Enrolled)
	assert.Equal(t, 33, report.Funnel.ConversionRate)

	// Only sources that produced candidates appear, in canonical order.
	require.Len(t, report.Sources, 2)
	assert.Equal(t, models.SourceGraduate, report.Sources[0].Source)
	assert.Equal(t, models.SourceFriend, report.Sources[1].Source)
	assert.Equal(t, 2, report.Sources[1].Count)
	assert.Equal(t, 1, report.Sources[1].EnrolledCount)
}

func TestReportServiceConversionRequiresTenant(t *testing.T) {
	svc := NewReportService(rosterOf("inst-1"), nil, time.Minute, nil)

	_, err := svc.Conversion(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrMissingTenantContext))
}

func TestReportServiceConversionStoreUnavailable(t *testing.T) {
	svc := NewReportService(&fakeRoster{err: errors.New("connection refused")}, nil, time.Minute, nil)

	_, err := svc.Conversion(context.Background(), "inst-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrRemoteUnavailable))
}

func TestReportServiceExportCSV(t *testing.T) {
	svc := NewReportService(rosterOf("inst-1"), nil, time.Minute, nil)

	result, err := svc.ExportCandidates(context.Background(), "inst-1", FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".csv"))

	body := string(result.Content)
	assert.Contains(t, body, "Name,Phone,Yeshiva,Source,Stage,Status,Score,Created")
	assert.Contains(t, body, "Levi Katz")
	assert.Equal(t, 4, strings.Count(strings.TrimSpace(body), "\n")+1)
}

func TestReportServiceExportPDF(t *testing.T) {
	svc := NewReportService(rosterOf("inst-1"), nil, time.Minute, nil)

	result, err := svc.ExportCandidates(context.Background(), "inst-1", FormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasSuffix(result.FileName, ".pdf"))
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestReportServiceExportExcludesForeignRecords(t *testing.T) {
	roster := rosterOf("inst-1")
	roster.candidates = append(roster.candidates, models.Candidate{
		ID: "c-foreign", InstitutionID: "inst-2", FullName: "Should Not Appear",
		Source: models.SourceAd, Stage: models.StageInitial, Status: models.StatusAccepted,
	})
	svc := NewReportService(roster, nil, time.Minute, nil)

	result, err := svc.ExportCandidates(context.Background(), "inst-1", FormatCSV)
	require.NoError(t, err)
	assert.NotContains(t, string(result.Content), "Should Not Appear")
}
