package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/tenancy"
)

const tenantContextKey = "tenant_context"

// ResolveTenant resolves the tenant context for the request at most once and
// memoizes it in the gin context; repeated calls within one request always
// see the same value.
func ResolveTenant(c *gin.Context, resolver *tenancy.Resolver) (*tenancy.TenantContext, error) {
	if v, exists := c.Get(tenantContextKey); exists {
		if tc, ok := v.(*tenancy.TenantContext); ok {
			return tc, nil
		}
	}

	tc, err := resolver.Resolve(c.Request.Context(), Principal(c), c.Request.URL.Path)
	if err != nil {
		return nil, err
	}
	c.Set(tenantContextKey, tc)
	return tc, nil
}

// TenantContext returns the memoized context, if the request resolved one.
func TenantContext(c *gin.Context) (*tenancy.TenantContext, bool) {
	if v, exists := c.Get(tenantContextKey); exists {
		if tc, ok := v.(*tenancy.TenantContext); ok {
			return tc, true
		}
	}
	return nil, false
}

// ValidateTenantAccess runs the access validator for the current request and
// writes the classified rejection itself, so handlers only deal with the
// success path. Ownership denials are reported as plain 404s elsewhere; here
// role and tenant failures map to 401/403.
func ValidateTenantAccess(c *gin.Context, resolver *tenancy.Resolver, validator *tenancy.Validator, allowed ...tenancy.Role) (*tenancy.TenantContext, bool) {
	p := Principal(c)
	path := c.Request.URL.Path

	var tc *tenancy.TenantContext
	var err error
	if p == nil {
		err = tenancy.ErrUnauthenticated
	} else if tc, err = ResolveTenant(c, resolver); err == nil {
		err = validator.ValidateContext(p, path, tc, allowed...)
	}
	if err != nil {
		switch {
		case errors.Is(err, tenancy.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		case errors.Is(err, tenancy.ErrRoleForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		case errors.Is(err, tenancy.ErrTenantRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "No school resolved for tenant route"})
		case errors.Is(err, tenancy.ErrTenantMismatch):
			c.JSON(http.StatusForbidden, gin.H{"error": "School mismatch"})
		case errors.Is(err, tenancy.ErrSchoolInactive):
			c.JSON(http.StatusForbidden, gin.H{"error": "School is not active"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "School lookup unavailable"})
		}
		c.Abort()
		return nil, false
	}

	return tc, true
}
