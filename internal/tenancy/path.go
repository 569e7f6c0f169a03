package tenancy

import "strings"

// TenantAPIPrefix is the explicit multi-tenant API namespace.
const TenantAPIPrefix = "/schools/"

// legacySections are the second segments that mark the legacy UI shape
// /{slug}/{section}/...
var legacySections = map[string]bool{
	"admin":     true,
	"teachers":  true,
	"students":  true,
	"dashboard": true,
}

// reservedPrefixes are top-level names that can never be tenant slugs, so
// /admin/students resolves as the admin area and not as school "admin".
var reservedPrefixes = map[string]bool{
	"admin":       true,
	"teachers":    true,
	"students":    true,
	"dashboard":   true,
	"schools":     true,
	"super-admin": true,
	"controller":  true,
	"login":       true,
	"api":         true,
	"health":      true,
	"metrics":     true,
	"swagger":     true,
}

// ExtractSlug parses a request path into a tenant slug, or "" when the path
// carries none. Matching is pure and case-sensitive; no existence check.
func ExtractSlug(path string) string {
	if rest, ok := strings.CutPrefix(path, TenantAPIPrefix); ok {
		slug, _, _ := strings.Cut(rest, "/")
		return slug
	}

	segments := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(segments) < 2 {
		return ""
	}
	first, second := segments[0], segments[1]
	if first == "" || reservedPrefixes[first] {
		return ""
	}
	if legacySections[second] {
		return first
	}
	return ""
}

// UnderTenantAPI reports whether path lives in the explicit tenant API
// namespace, where an unresolved tenant is an error rather than legacy.
func UnderTenantAPI(path string) bool {
	return strings.HasPrefix(path, TenantAPIPrefix)
}
