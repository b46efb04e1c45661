package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/shavuson/recruit-api/internal/models"
)

// InteractionRepository persists append-only contact events. Interactions are
// never updated or deleted individually; they disappear only with their
// candidate.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository constructs an InteractionRepository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// ListByCandidate returns the candidate's interactions, newest first, within
// the institution scope.
func (r *InteractionRepository) ListByCandidate(ctx context.Context, institutionID, candidateID string) ([]models.Interaction, error) {
	const query = `SELECT id, candidate_id, institution_id, type, summary, timestamp
        FROM interactions WHERE candidate_id = $1 AND institution_id = $2 ORDER BY timestamp DESC`
	var interactions []models.Interaction
	if err := r.db.SelectContext(ctx, &interactions, query, candidateID, institutionID); err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return interactions, nil
}

// ListRecent returns the institution's latest interactions across all
// candidates, newest first, capped at limit.
func (r *InteractionRepository) ListRecent(ctx context.Context, institutionID string, limit int) ([]models.Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, candidate_id, institution_id, type, summary, timestamp
        FROM interactions WHERE institution_id = $1 ORDER BY timestamp DESC LIMIT $2`
	var interactions []models.Interaction
	if err := r.db.SelectContext(ctx, &interactions, query, institutionID, limit); err != nil {
		return nil, fmt.Errorf("list recent interactions: %w", err)
	}
	return interactions, nil
}

// Create appends a new interaction.
func (r *InteractionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	if interaction.Timestamp.IsZero() {
		interaction.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO interactions (id, candidate_id, institution_id, type, summary, timestamp)
        VALUES (:id, :candidate_id, :institution_id, :type, :summary, :timestamp)`
	if _, err := r.db.NamedExecContext(ctx, query, interaction); err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}
	return nil
}
