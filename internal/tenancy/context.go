package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// TenantContext is the per-request tenancy decision input. Exactly one of
// IsPlatformAdmin, IsLegacyTenant, SchoolID != nil holds:
//   - platform admins bypass all tenant filters and carry no school
//   - the legacy tenant is the pre-multi-tenant deployment, an implicit
//     tenant identified by a nil SchoolID rather than a real row
//   - otherwise the context is pinned to one school
//
// Contexts are derived fresh per request, memoized for its duration, and
// never persisted.
type TenantContext struct {
	SchoolID        *uuid.UUID
	SchoolSlug      string
	IsLegacyTenant  bool
	IsPlatformAdmin bool
	School          *School
}

// Resolver combines a principal, a request path, and school lookups into a
// TenantContext. An unresolved tenant degrades to nil fields instead of an
// error; downstream policy decides what that means.
type Resolver struct {
	store SchoolStore
}

func NewResolver(store SchoolStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve derives the tenant context for (principal, path). First match wins:
// platform admin, session-bound school, path slug lookup, legacy fallback.
// Not-found slugs are tolerated; other lookup failures fail closed with
// ErrLookupUnavailable. Same inputs always yield the same context.
func (r *Resolver) Resolve(ctx context.Context, p *Principal, path string) (*TenantContext, error) {
	if p != nil && p.Role == RolePlatformAdmin {
		return &TenantContext{IsPlatformAdmin: true}, nil
	}

	tc := &TenantContext{}
	slug := ExtractSlug(path)

	if p != nil && p.SchoolID != nil {
		tc.SchoolID = p.SchoolID
		tc.SchoolSlug = p.SchoolSlug
	} else if slug != "" {
		school, err := r.store.BySlug(ctx, slug)
		if err != nil && !errors.Is(err, ErrSchoolNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
		}
		// Not found stays tenant-less; some legacy routes have no row.
		if school != nil {
			id := school.ID
			tc.SchoolID = &id
			tc.SchoolSlug = school.Slug
			tc.School = school
		}
	}

	tc.IsLegacyTenant = tc.SchoolID == nil && slug == ""

	if tc.SchoolID != nil && tc.School == nil {
		school, err := r.store.ByID(ctx, *tc.SchoolID)
		if err != nil && !errors.Is(err, ErrSchoolNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrLookupUnavailable, err)
		}
		tc.School = school
	}

	return tc, nil
}
