package tenancy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// SchoolStatus values mirror the schools table; only "active" tenants may
// operate.
type SchoolStatus string

const (
	StatusActive    SchoolStatus = "active"
	StatusTrial     SchoolStatus = "trial"
	StatusSuspended SchoolStatus = "suspended"
	StatusInactive  SchoolStatus = "inactive"
	StatusExpired   SchoolStatus = "expired"
	StatusCancelled SchoolStatus = "cancelled"
)

// School is the read-only snapshot this core needs; the full row lives in
// internal/models and is managed by out-of-scope workflows.
type School struct {
	ID     uuid.UUID
	Name   string
	Slug   string
	Status SchoolStatus
}

// AssertActive rejects contexts pinned to a school that is not active.
// Contexts without a school snapshot pass; the caller decides what a missing
// row means.
func AssertActive(tc *TenantContext) error {
	if tc != nil && tc.School != nil && tc.School.Status != StatusActive {
		return ErrSchoolInactive
	}
	return nil
}

// ErrSchoolNotFound is returned by SchoolStore lookups for missing rows.
// It is the only lookup failure the resolver tolerates.
var ErrSchoolNotFound = errors.New("school not found")

// SchoolStore is the persistence seam for school lookups.
type SchoolStore interface {
	BySlug(ctx context.Context, slug string) (*School, error)
	ByID(ctx context.Context, id uuid.UUID) (*School, error)
}
