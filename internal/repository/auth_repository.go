package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shavuson/recruit-api/internal/models"
)

// AuthRepository persists operator accounts and refresh tokens.
type AuthRepository struct {
	db *sqlx.DB
}

// NewAuthRepository constructs an AuthRepository.
func NewAuthRepository(db *sqlx.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

// FindOperatorByEmail fetches a platform operator by login email.
func (r *AuthRepository) FindOperatorByEmail(ctx context.Context, email string) (*models.Operator, error) {
	const query = `SELECT id, email, password_hash, full_name, active, last_login, created_at, updated_at
        FROM operators WHERE LOWER(email) = LOWER($1)`
	var operator models.Operator
	if err := r.db.GetContext(ctx, &operator, query, email); err != nil {
		return nil, err
	}
	return &operator, nil
}

// UpdateOperatorLastLogin stamps the operator's last successful login.
func (r *AuthRepository) UpdateOperatorLastLogin(ctx context.Context, id string, ts time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE operators SET last_login = $2, updated_at = $2 WHERE id = $1`, id, ts); err != nil {
		return fmt.Errorf("update operator last login: %w", err)
	}
	return nil
}

// CreateRefreshToken stores a new refresh token.
func (r *AuthRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	const query = `INSERT INTO refresh_tokens (id, institution_id, token, expires_at, created_at, revoked, ip_address, user_agent)
        VALUES (:id, :institution_id, :token, :expires_at, :created_at, :revoked, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken looks up a refresh token by its opaque value.
func (r *AuthRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, institution_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent
        FROM refresh_tokens WHERE token = $1`
	var stored models.RefreshToken
	if err := r.db.GetContext(ctx, &stored, query, token); err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshToken marks one token revoked.
func (r *AuthRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE id = $1`, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeInstitutionRefreshTokens revokes every live token for the tenant.
func (r *AuthRepository) RevokeInstitutionRefreshTokens(ctx context.Context, institutionID string) error {
	const query = `UPDATE refresh_tokens SET revoked = true, revoked_at = $2 WHERE institution_id = $1 AND revoked = false`
	if _, err := r.db.ExecContext(ctx, query, institutionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke institution refresh tokens: %w", err)
	}
	return nil
}
