package models

import (
	"time"
)

// AccessState describes whether an institution's session may reach protected
// functionality.
type AccessState string

const (
	AccessActive  AccessState = "ACTIVE"
	AccessExpired AccessState = "EXPIRED"
)

// Institution is a tenant account. One institution owns all of its candidate
// and interaction data; institutions are never hard-deleted, an operator
// toggles Active instead.
type Institution struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Email           string    `db:"email" json:"email"`
	PasswordHash    string    `db:"password_hash" json:"-"`
	SignupDate      time.Time `db:"signup_date" json:"signup_date"`
	TrialExpiryDate time.Time `db:"trial_expiry_date" json:"trial_expiry_date"`
	Active          bool      `db:"is_active" json:"is_active"`
	HasPayment      bool      `db:"has_payment_method" json:"has_payment_method"`
	EnrollmentGoal  *int      `db:"enrollment_goal" json:"enrollment_goal,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`

	// CandidateCount is populated on admin listings only.
	CandidateCount *int `db:"candidate_count" json:"candidate_count,omitempty"`
}

// TrialDaysRemaining returns the whole days left on the trial, clamped to zero.
// The clock is injected so the computation stays deterministic under test.
func (i Institution) TrialDaysRemaining(now time.Time) int {
	diff := i.TrialExpiryDate.Sub(now)
	if diff <= 0 {
		return 0
	}
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// AccessState evaluates the subscription policy. The trial rule takes
// precedence: an unpaid institution past expiry is Expired even when the
// active flag is still set. A paying institution is governed by the active
// flag alone.
func (i Institution) AccessState(now time.Time) AccessState {
	if now.After(i.TrialExpiryDate) && !i.HasPayment {
		return AccessExpired
	}
	if i.Active {
		return AccessActive
	}
	return AccessExpired
}

// ExtendTrial returns a copy with the expiry advanced by the given number of
// days from the current expiry. Extensions stack; they never reset to now.
func (i Institution) ExtendTrial(days int) Institution {
	out := i
	out.TrialExpiryDate = i.TrialExpiryDate.AddDate(0, 0, days)
	return out
}

// InstitutionFilter captures admin listing criteria.
type InstitutionFilter struct {
	Search     string
	Active     *bool
	HasPayment *bool
	Page       int
	PageSize   int
}

// PlatformStats summarises the whole platform for the operator panel.
type PlatformStats struct {
	TotalInstitutions int `json:"total_institutions"`
	PaidSubscriptions int `json:"paid_subscriptions"`
	FreeTrials        int `json:"free_trials"`
	TotalCandidates   int `json:"total_candidates"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
