package tenancy

import "context"

// Validator enforces role and tenant-match rules on a resolved context. It is
// designed to run once per logical data operation and costs at most one
// cached lookup per request.
type Validator struct {
	resolver *Resolver
}

func NewValidator(resolver *Resolver) *Validator {
	return &Validator{resolver: resolver}
}

// Validate classifies access for (principal, path) against an optional set of
// allowed roles and returns the validated tenant context.
//
// Rejections, in order: ErrUnauthenticated, ErrRoleForbidden (platform admins
// always pass the role check), ErrTenantRequired for tenant paths that
// resolve to no school, ErrTenantMismatch when the path names a school other
// than the session's, ErrSchoolInactive when the resolved school is not
// active. The mismatch rule is the central anti-leak rule: a session for
// school A is never satisfied by a URL naming school B.
func (v *Validator) Validate(ctx context.Context, p *Principal, path string, allowed ...Role) (*TenantContext, error) {
	if p == nil {
		return nil, ErrUnauthenticated
	}

	tc, err := v.resolver.Resolve(ctx, p, path)
	if err != nil {
		return nil, err
	}

	if err := v.ValidateContext(p, path, tc, allowed...); err != nil {
		return nil, err
	}
	return tc, nil
}

// ValidateContext applies the access rules to an already-resolved context,
// letting callers that memoize resolution per request avoid a second lookup.
func (v *Validator) ValidateContext(p *Principal, path string, tc *TenantContext, allowed ...Role) error {
	if p == nil {
		return ErrUnauthenticated
	}

	if p.Role != RolePlatformAdmin && len(allowed) > 0 {
		permitted := false
		for _, r := range allowed {
			if p.Role == r {
				permitted = true
				break
			}
		}
		if !permitted {
			return ErrRoleForbidden
		}
	}

	// A tenant-API path with no resolved school, or a slug that matched no
	// school row at all, never degrades to an unscoped or legacy query.
	if tc.SchoolID == nil && !tc.IsPlatformAdmin {
		if UnderTenantAPI(path) || !tc.IsLegacyTenant {
			return ErrTenantRequired
		}
	}

	if slug := ExtractSlug(path); slug != "" && p.SchoolSlug != "" && slug != p.SchoolSlug {
		return ErrTenantMismatch
	}

	return AssertActive(tc)
}
