// Package tenant implements the isolation rules that keep every record bound
// to exactly one institution. All helpers are pure: they never mutate their
// inputs and every violation surfaces as an error to the caller rather than
// being silently corrected.
package tenant

import (
	appErrors "github.com/shavuson/recruit-api/pkg/errors"
)

// Owned is any record that knows which institution owns it.
type Owned interface {
	Tenant() string
}

// Require guards a scoped operation. An empty institution ID means the caller
// lost its tenant context; the operation must abort before any write.
func Require(institutionID string) error {
	if institutionID == "" {
		return appErrors.ErrMissingTenantContext
	}
	return nil
}

// Scope returns the subsequence of records owned by the given institution,
// preserving the original relative order. The input slice is left untouched.
func Scope[T Owned](records []T, institutionID string) []T {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if rec.Tenant() == institutionID {
			out = append(out, rec)
		}
	}
	return out
}

// AssertOwnership fails when the record is owned by a different institution.
// It is called before every update or delete so cross-tenant writes can never
// reach the store.
func AssertOwnership(record Owned, institutionID string) error {
	if err := Require(institutionID); err != nil {
		return err
	}
	if record.Tenant() != institutionID {
		return appErrors.ErrTenantMismatch
	}
	return nil
}
