package models

import "time"

// InteractionType classifies a logged contact event.
type InteractionType string

const (
	InteractionPhone       InteractionType = "PHONE"
	InteractionWhatsApp    InteractionType = "WHATSAPP"
	InteractionMeeting     InteractionType = "MEETING"
	InteractionEmail       InteractionType = "EMAIL"
	InteractionInterview   InteractionType = "INTERVIEW"
	InteractionObservation InteractionType = "OBSERVATION"
)

// Valid reports whether the type is a member of the closed set.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionPhone, InteractionWhatsApp, InteractionMeeting,
		InteractionEmail, InteractionInterview, InteractionObservation:
		return true
	}
	return false
}

// Interaction is an append-only record of one contact event with a candidate.
// InstitutionID is denormalized from the candidate for tenant filtering and
// must always match the owning candidate's institution.
type Interaction struct {
	ID            string          `db:"id" json:"id"`
	CandidateID   string          `db:"candidate_id" json:"candidate_id"`
	InstitutionID string          `db:"institution_id" json:"institution_id"`
	Type          InteractionType `db:"type" json:"type"`
	Summary       string          `db:"summary" json:"summary"`
	Timestamp     time.Time       `db:"timestamp" json:"timestamp"`
}

// Tenant returns the owning institution ID.
func (i Interaction) Tenant() string { return i.InstitutionID }
