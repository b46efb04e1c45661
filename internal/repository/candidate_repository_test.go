package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shavuson/recruit-api/internal/models"
)

func newCandidateMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func candidateRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "institution_id", "full_name", "phone", "current_yeshiva", "source", "stage", "status",
		"photo", "visit_start", "visit_end", "assigned_host", "assigned_room", "special_requirements",
		"evaluation_score", "interviewer_name", "interview_status", "created_at", "updated_at",
	}).AddRow(
		"cand-1", "inst-1", "Levi Katz", "050-1234567", "Tiferet", "FRIEND", "DECISION", "ACCEPTED",
		nil, nil, nil, nil, nil, nil,
		nil, nil, nil, now, now,
	)
}

func TestCandidateRepositoryListScopesByInstitution(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM candidates WHERE institution_id = \$1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("inst-1").
		WillReturnRows(candidateRows(now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM candidates WHERE institution_id = \$1`).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	candidates, total, err := repo.List(context.Background(), "inst-1", models.CandidateFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, candidates, 1)
	assert.Equal(t, "cand-1", candidates[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM candidates WHERE institution_id = \$1 AND stage = \$2 AND \(LOWER\(full_name\) LIKE \$3 OR phone LIKE \$3\)`).
		WithArgs("inst-1", models.StageDecision, "%levi%").
		WillReturnRows(candidateRows(now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM candidates`).
		WithArgs("inst-1", models.StageDecision, "%levi%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	stage := models.StageDecision
	_, total, err := repo.List(context.Background(), "inst-1", models.CandidateFilter{
		Stage:  &stage,
		Search: "Levi",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryListIgnoresUnknownSortColumn(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WithArgs("inst-1").
		WillReturnRows(candidateRows(time.Now()))
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, _, err := repo.List(context.Background(), "inst-1", models.CandidateFilter{
		SortBy:    "password_hash; DROP TABLE candidates",
		SortOrder: "sideways",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryFindByIDScoped(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM candidates WHERE id = \$1 AND institution_id = \$2`).
		WithArgs("cand-1", "inst-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "inst-2", "cand-1")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec(`INSERT INTO candidates`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	candidate := &models.Candidate{
		InstitutionID: "inst-1",
		FullName:      "Levi Katz",
		Phone:         "050-1234567",
		Source:        models.SourceFriend,
		Stage:         models.StageInitial,
		Status:        models.StatusAccepted,
	}
	require.NoError(t, repo.Create(context.Background(), candidate))
	assert.NotEmpty(t, candidate.ID)
	assert.False(t, candidate.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryUpdateOutsideTenantReturnsNoRows(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectExec(`UPDATE candidates SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Candidate{
		ID:            "cand-1",
		InstitutionID: "inst-2",
	})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryDeleteRemovesInteractionsFirst(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM interactions WHERE candidate_id = \$1 AND institution_id = \$2`).
		WithArgs("cand-1", "inst-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM candidates WHERE id = \$1 AND institution_id = \$2`).
		WithArgs("cand-1", "inst-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "inst-1", "cand-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepositoryCountByInstitution(t *testing.T) {
	db, mock, cleanup := newCandidateMock(t)
	defer cleanup()
	repo := NewCandidateRepository(db)

	mock.ExpectQuery(`SELECT institution_id, COUNT\(\*\) AS count FROM candidates GROUP BY institution_id`).
		WillReturnRows(sqlmock.NewRows([]string{"institution_id", "count"}).
			AddRow("inst-1", 12).
			AddRow("inst-2", 3))

	counts, err := repo.CountByInstitution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, counts["inst-1"])
	assert.Equal(t, 3, counts["inst-2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
