package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/schoolhub/platform/internal/config"
	"github.com/schoolhub/platform/internal/tenancy"
)

// Redirect reason codes, carried as a query flag so login and status pages
// can explain why the user landed there.
const (
	ReasonLoginRequired  = "login_required"
	ReasonAccessDenied   = "access_denied"
	ReasonSchoolInactive = "school_inactive"
)

// publicPrefixes never require a session.
var publicPrefixes = []string{
	"/health",
	"/metrics",
	"/swagger",
	"/logos",
	"/favicon.ico",
	"/api/v1/auth/",
	"/school-status",
}

// loginPaths is the fixed allow-list of login pages.
var loginPaths = map[string]bool{
	"/login":             true,
	"/admin/login":       true,
	"/teachers/login":    true,
	"/controller/login":  true,
	"/super-admin/login": true,
}

// roleHomes maps each role to its landing route.
var roleHomes = map[tenancy.Role]string{
	tenancy.RoleAdmin:         "/admin",
	tenancy.RoleTeacher:       "/teachers",
	tenancy.RoleController:    "/controller",
	tenancy.RoleRegistral:     "/dashboard",
	tenancy.RolePlatformAdmin: "/super-admin",
}

// areaRoles maps a path area (top-level prefix, or the section segment of the
// legacy /{slug}/{section} shape) to the roles allowed inside it. Platform
// admins pass every area.
var areaRoles = map[string][]tenancy.Role{
	"admin":       {tenancy.RoleAdmin},
	"teachers":    {tenancy.RoleTeacher},
	"controller":  {tenancy.RoleController},
	"dashboard":   {tenancy.RoleRegistral},
	"super-admin": {tenancy.RolePlatformAdmin},
	"students":    {tenancy.RoleAdmin, tenancy.RoleTeacher, tenancy.RoleRegistral},
}

// RouteGuard is the edge gate that runs before any handler: login
// redirection, per-area role checks, the defensive slug comparison, and the
// school status gate. Handlers re-check tenancy through the validator; the
// guard exists so an unauthorized request never reaches them at all.
//
// The school status read is the only check allowed to fail open, and only
// when cfg.Tenancy.StatusFailOpen is set; slug and role comparisons always
// fail closed.
func RouteGuard(resolver *tenancy.Resolver, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		p := Principal(c)

		if loginPaths[path] {
			// Authenticated users have no business on a login page.
			if p != nil {
				redirect(c, roleHome(p.Role), "")
				return
			}
			c.Next()
			return
		}

		if isPublic(path) {
			c.Next()
			return
		}

		if p == nil {
			redirect(c, loginPathFor(path), ReasonLoginRequired)
			return
		}

		if roles, ok := areaRoles[pathArea(path)]; ok && !roleAllowed(p.Role, roles) {
			redirect(c, loginPathFor(path), ReasonAccessDenied)
			return
		}

		// Defensive duplicate of the validator's mismatch rule: a session
		// bound to school A never passes a path naming school B.
		if slug := tenancy.ExtractSlug(path); slug != "" && p.SchoolSlug != "" && slug != p.SchoolSlug {
			redirect(c, loginPathFor(path), ReasonAccessDenied)
			return
		}

		// Tenant status gate for school-bound sessions. Resolution here is
		// memoized, so handlers reuse the same context without a new lookup.
		if p.SchoolID != nil {
			tc, err := ResolveTenant(c, resolver)
			if err != nil {
				if cfg.Tenancy.StatusFailOpen {
					log.Printf("tenant status check failed open for school %s: %v", p.SchoolID, err)
					c.Next()
					return
				}
				redirect(c, "/school-status?state=unavailable", ReasonSchoolInactive)
				return
			}
			if tc.School == nil {
				// Bound school row is gone; a definite answer, not an outage.
				redirect(c, "/school-status?state=unknown", ReasonSchoolInactive)
				return
			}
			if tenancy.AssertActive(tc) != nil {
				redirect(c, "/school-status?state="+string(tc.School.Status), ReasonSchoolInactive)
				return
			}
		}

		c.Next()
	}
}

func isPublic(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// pathArea extracts the role-bearing segment: the top-level prefix for
// /admin/... style paths, or the section segment for the legacy
// /{slug}/{section}/... shape.
func pathArea(path string) string {
	segments := strings.SplitN(strings.TrimPrefix(path, "/"), "/", 3)
	if len(segments) == 0 || segments[0] == "" {
		return ""
	}
	if _, ok := areaRoles[segments[0]]; ok {
		return segments[0]
	}
	if tenancy.ExtractSlug(path) != "" && len(segments) > 1 {
		return segments[1]
	}
	return ""
}

func roleAllowed(role tenancy.Role, allowed []tenancy.Role) bool {
	if role == tenancy.RolePlatformAdmin {
		return true
	}
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// loginPathFor picks the login page belonging to the path's area, falling
// back to the generic login.
func loginPathFor(path string) string {
	switch pathArea(path) {
	case "admin":
		return "/admin/login"
	case "teachers":
		return "/teachers/login"
	case "controller":
		return "/controller/login"
	case "super-admin":
		return "/super-admin/login"
	default:
		return "/login"
	}
}

func roleHome(role tenancy.Role) string {
	if home, ok := roleHomes[role]; ok {
		return home
	}
	return "/login"
}

func redirect(c *gin.Context, target, reason string) {
	if reason != "" {
		if strings.Contains(target, "?") {
			target += "&reason=" + reason
		} else {
			target += "?reason=" + reason
		}
	}
	c.Redirect(http.StatusFound, target)
	c.Abort()
}
