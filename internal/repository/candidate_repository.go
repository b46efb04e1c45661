package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shavuson/recruit-api/internal/models"
)

// CandidateRepository manages persistence for candidate records. Every query
// filters by institution_id so rows can never leak across tenants.
type CandidateRepository struct {
	db *sqlx.DB
}

// NewCandidateRepository constructs a CandidateRepository.
func NewCandidateRepository(db *sqlx.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

const candidateColumns = `id, institution_id, full_name, phone, current_yeshiva, source, stage, status,
        photo, visit_start, visit_end, assigned_host, assigned_room, special_requirements,
        evaluation_score, interviewer_name, interview_status, created_at, updated_at`

// List returns the institution's candidates matching the provided filters.
func (r *CandidateRepository) List(ctx context.Context, institutionID string, filter models.CandidateFilter) ([]models.Candidate, int, error) {
	conditions := []string{"institution_id = $1"}
	args := []interface{}{institutionID}

	if filter.Stage != nil {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", len(args)+1))
		args = append(args, *filter.Stage)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Source != nil {
		conditions = append(conditions, fmt.Sprintf("source = $%d", len(args)+1))
		args = append(args, *filter.Source)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR phone LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"stage":      "stage",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		candidateColumns, where, column, order, size, offset)

	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list candidates: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM candidates WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}
	return candidates, total, nil
}

// ListAll returns every candidate for the institution without pagination, for
// dashboard and report aggregation.
func (r *CandidateRepository) ListAll(ctx context.Context, institutionID string) ([]models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE institution_id = $1 ORDER BY created_at DESC`, candidateColumns)
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, institutionID); err != nil {
		return nil, fmt.Errorf("list all candidates: %w", err)
	}
	return candidates, nil
}

// FindByID fetches a candidate within the institution's scope.
func (r *CandidateRepository) FindByID(ctx context.Context, institutionID, id string) (*models.Candidate, error) {
	query := fmt.Sprintf(`SELECT %s FROM candidates WHERE id = $1 AND institution_id = $2`, candidateColumns)
	var candidate models.Candidate
	if err := r.db.GetContext(ctx, &candidate, query, id, institutionID); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// Create inserts a new candidate record.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	if candidate.ID == "" {
		candidate.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}
	candidate.UpdatedAt = now
	const query = `INSERT INTO candidates (id, institution_id, full_name, phone, current_yeshiva, source, stage, status,
        photo, visit_start, visit_end, assigned_host, assigned_room, special_requirements,
        evaluation_score, interviewer_name, interview_status, created_at, updated_at)
        VALUES (:id, :institution_id, :full_name, :phone, :current_yeshiva, :source, :stage, :status,
        :photo, :visit_start, :visit_end, :assigned_host, :assigned_room, :special_requirements,
        :evaluation_score, :interviewer_name, :interview_status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, candidate); err != nil {
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}

// Update modifies an existing candidate. The institution_id predicate keeps
// the write inside the owning tenant even if the caller's check regressed.
func (r *CandidateRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	candidate.UpdatedAt = time.Now().UTC()
	const query = `UPDATE candidates SET full_name = :full_name, phone = :phone, current_yeshiva = :current_yeshiva,
        source = :source, stage = :stage, status = :status, photo = :photo,
        visit_start = :visit_start, visit_end = :visit_end, assigned_host = :assigned_host,
        assigned_room = :assigned_room, special_requirements = :special_requirements,
        evaluation_score = :evaluation_score, interviewer_name = :interviewer_name,
        interview_status = :interview_status, updated_at = :updated_at
        WHERE id = :id AND institution_id = :institution_id`
	result, err := r.db.NamedExecContext(ctx, query, candidate)
	if err != nil {
		return fmt.Errorf("update candidate: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a candidate and its interactions within the tenant scope.
func (r *CandidateRepository) Delete(ctx context.Context, institutionID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete candidate: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE candidate_id = $1 AND institution_id = $2`, id, institutionID); err != nil {
		return fmt.Errorf("delete candidate interactions: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1 AND institution_id = $2`, id, institutionID)
	if err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// CountByInstitution returns per-institution candidate totals for the
// operator panel.
func (r *CandidateRepository) CountByInstitution(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		InstitutionID string `db:"institution_id"`
		Count         int    `db:"count"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, `SELECT institution_id, COUNT(*) AS count FROM candidates GROUP BY institution_id`); err != nil {
		return nil, fmt.Errorf("count candidates by institution: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.InstitutionID] = row.Count
	}
	return counts, nil
}
