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

func newInstitutionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func institutionRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "signup_date", "trial_expiry_date",
		"is_active", "has_payment_method", "enrollment_goal", "created_at", "updated_at",
	}).AddRow(
		"inst-1", "Yeshiva Ohr Torah", "office@ohrtorah.example", "hash", now, now.AddDate(0, 0, 14),
		true, false, nil, now, now,
	)
}

func TestInstitutionRepositoryFindByEmailIsCaseInsensitive(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM institutions WHERE LOWER\(email\) = LOWER\(\$1\)`).
		WithArgs("Office@OhrTorah.example").
		WillReturnRows(institutionRow(time.Now()))

	institution, err := repo.FindByEmail(context.Background(), "Office@OhrTorah.example")
	require.NoError(t, err)
	assert.Equal(t, "inst-1", institution.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryListWithCandidateCounts(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "signup_date", "trial_expiry_date",
		"is_active", "has_payment_method", "enrollment_goal", "created_at", "updated_at", "candidate_count",
	}).AddRow(
		"inst-1", "Yeshiva Ohr Torah", "office@ohrtorah.example", "hash", now, now,
		true, false, nil, now, now, 7,
	)

	mock.ExpectQuery(`FROM institutions i LEFT JOIN candidates c ON c\.institution_id = i\.id`).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM institutions i`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	institutions, total, err := repo.List(context.Background(), models.InstitutionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, institutions, 1)
	require.NotNil(t, institutions[0].CandidateCount)
	assert.Equal(t, 7, *institutions[0].CandidateCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryListFiltersByPayment(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectQuery(`i\.has_payment_method = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM institutions i`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	paid := true
	_, total, err := repo.List(context.Background(), models.InstitutionFilter{HasPayment: &paid})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectExec(`INSERT INTO institutions`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	institution := &models.Institution{
		Name:  "Yeshiva Ohr Torah",
		Email: "office@ohrtorah.example",
	}
	require.NoError(t, repo.Create(context.Background(), institution))
	assert.NotEmpty(t, institution.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectExec(`UPDATE institutions SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Institution{ID: "inst-404"})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectQuery(`SELECT 1 FROM institutions WHERE LOWER\(email\) = LOWER\(\$1\) LIMIT 1`).
		WithArgs("office@ohrtorah.example").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "office@ohrtorah.example")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(`SELECT 1 FROM institutions`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstitutionRepositoryPlatformStats(t *testing.T) {
	db, mock, cleanup := newInstitutionMock(t)
	defer cleanup()
	repo := NewInstitutionRepository(db)

	mock.ExpectQuery(`FROM institutions`).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_institutions", "paid_subscriptions", "free_trials", "total_candidates",
		}).AddRow(10, 4, 6, 123))

	stats, err := repo.PlatformStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalInstitutions)
	assert.Equal(t, 4, stats.PaidSubscriptions)
	assert.Equal(t, 6, stats.FreeTrials)
	assert.Equal(t, 123, stats.TotalCandidates)
	assert.NoError(t, mock.ExpectationsWereMet())
}
