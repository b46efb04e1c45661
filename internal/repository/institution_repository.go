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

// InstitutionRepository manages tenant account records.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs an InstitutionRepository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

const institutionColumns = `id, name, email, password_hash, signup_date, trial_expiry_date,
        is_active, has_payment_method, enrollment_goal, created_at, updated_at`

// List returns institutions for the operator panel, with candidate totals.
func (r *InstitutionRepository) List(ctx context.Context, filter models.InstitutionFilter) ([]models.Institution, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(i.name) LIKE $%d OR LOWER(i.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("i.is_active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.HasPayment != nil {
		conditions = append(conditions, fmt.Sprintf("i.has_payment_method = $%d", len(args)+1))
		args = append(args, *filter.HasPayment)
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT i.id, i.name, i.email, i.password_hash, i.signup_date, i.trial_expiry_date,
        i.is_active, i.has_payment_method, i.enrollment_goal, i.created_at, i.updated_at,
        COUNT(c.id) AS candidate_count
        FROM institutions i LEFT JOIN candidates c ON c.institution_id = i.id
        WHERE %s GROUP BY i.id ORDER BY i.signup_date DESC LIMIT %d OFFSET %d`, where, size, offset)

	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list institutions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM institutions i WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count institutions: %w", err)
	}
	return institutions, total, nil
}

// FindByID fetches one institution.
func (r *InstitutionRepository) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	query := fmt.Sprintf(`SELECT %s FROM institutions WHERE id = $1`, institutionColumns)
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, id); err != nil {
		return nil, err
	}
	return &institution, nil
}

// FindByEmail fetches an institution by its login email.
func (r *InstitutionRepository) FindByEmail(ctx context.Context, email string) (*models.Institution, error) {
	query := fmt.Sprintf(`SELECT %s FROM institutions WHERE LOWER(email) = LOWER($1)`, institutionColumns)
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, email); err != nil {
		return nil, err
	}
	return &institution, nil
}

// Create provisions a new institution account.
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == "" {
		institution.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if institution.CreatedAt.IsZero() {
		institution.CreatedAt = now
	}
	institution.UpdatedAt = now
	const query = `INSERT INTO institutions (id, name, email, password_hash, signup_date, trial_expiry_date,
        is_active, has_payment_method, enrollment_goal, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :signup_date, :trial_expiry_date,
        :is_active, :has_payment_method, :enrollment_goal, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, institution); err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}

// Update persists mutable institution fields.
func (r *InstitutionRepository) Update(ctx context.Context, institution *models.Institution) error {
	institution.UpdatedAt = time.Now().UTC()
	const query = `UPDATE institutions SET name = :name, email = :email, trial_expiry_date = :trial_expiry_date,
        is_active = :is_active, has_payment_method = :has_payment_method, enrollment_goal = :enrollment_goal,
        updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, institution)
	if err != nil {
		return fmt.Errorf("update institution: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *InstitutionRepository) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	const query = `UPDATE institutions SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash, updatedAt); err != nil {
		return fmt.Errorf("update institution password: %w", err)
	}
	return nil
}

// ExistsByEmail checks whether the email is already registered.
func (r *InstitutionRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM institutions WHERE LOWER(email) = LOWER($1) LIMIT 1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check institution email: %w", err)
	}
	return true, nil
}

// PlatformStats aggregates platform totals for the operator panel.
func (r *InstitutionRepository) PlatformStats(ctx context.Context) (*models.PlatformStats, error) {
	var stats models.PlatformStats
	const query = `SELECT
        COUNT(*) AS total_institutions,
        COUNT(*) FILTER (WHERE has_payment_method) AS paid_subscriptions,
        COUNT(*) FILTER (WHERE NOT has_payment_method) AS free_trials,
        (SELECT COUNT(*) FROM candidates) AS total_candidates
        FROM institutions`
	row := struct {
		TotalInstitutions int `db:"total_institutions"`
		PaidSubscriptions int `db:"paid_subscriptions"`
		FreeTrials        int `db:"free_trials"`
		TotalCandidates   int `db:"total_candidates"`
	}{}
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	stats = models.PlatformStats{
		TotalInstitutions: row.TotalInstitutions,
		PaidSubscriptions: row.PaidSubscriptions,
		FreeTrials:        row.FreeTrials,
		TotalCandidates:   row.TotalCandidates,
	}
	return &stats, nil
}
