package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/config"
	"github.com/schoolhub/platform/internal/tenancy"
)

type fakeSchoolStore struct {
	bySlug map[string]*tenancy.School
	byID   map[uuid.UUID]*tenancy.School
	err    error
}

func (f *fakeSchoolStore) BySlug(ctx context.Context, slug string) (*tenancy.School, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.bySlug[slug]; ok {
		return s, nil
	}
	return nil, tenancy.ErrSchoolNotFound
}

func (f *fakeSchoolStore) ByID(ctx context.Context, id uuid.UUID) (*tenancy.School, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.byID[id]; ok {
		return s, nil
	}
	return nil, tenancy.ErrSchoolNotFound
}

func newGuardStore(schools ...*tenancy.School) *fakeSchoolStore {
	f := &fakeSchoolStore{
		bySlug: make(map[string]*tenancy.School),
		byID:   make(map[uuid.UUID]*tenancy.School),
	}
	for _, s := range schools {
		f.bySlug[s.Slug] = s
		f.byID[s.ID] = s
	}
	return f
}

func guardRouter(store tenancy.SchoolStore, failOpen bool, p *tenancy.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Tenancy: config.TenancyConfig{StatusFailOpen: failOpen}}
	resolver := tenancy.NewResolver(store)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if p != nil {
			SetPrincipal(c, p)
		}
		c.Next()
	})
	r.Use(RouteGuard(resolver, cfg))
	r.NoRoute(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func doGet(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, wantLocation string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	if got := w.Header().Get("Location"); got != wantLocation {
		t.Errorf("expected redirect to %q, got %q", wantLocation, got)
	}
}

func TestRouteGuardAnonymous(t *testing.T) {
	r := guardRouter(newGuardStore(), true, nil)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLoc  string
	}{
		{"Admin area", "/admin/students", http.StatusFound, "/admin/login?reason=login_required"},
		{"Teachers area", "/teachers/reports", http.StatusFound, "/teachers/login?reason=login_required"},
		{"Tenant API", "/schools/alpha/students", http.StatusFound, "/login?reason=login_required"},
		{"Health is public", "/health", http.StatusOK, ""},
		{"Root is public", "/", http.StatusOK, ""},
		{"Login page is public", "/admin/login", http.StatusOK, ""},
		{"Auth API is public", "/api/v1/auth/login", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, r, tt.path)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, w.Code)
			}
			if tt.wantLoc != "" {
				assertRedirect(t, w, tt.wantLoc)
			}
		})
	}
}

func TestRouteGuardAuthenticatedOnLoginPage(t *testing.T) {
	alpha := &tenancy.School{ID: uuid.New(), Name: "Alpha", Slug: "alpha", Status: tenancy.StatusActive}
	admin := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &alpha.ID, SchoolSlug: "alpha"}

	r := guardRouter(newGuardStore(alpha), true, admin)
	assertRedirect(t, doGet(t, r, "/admin/login"), "/admin")
}

func TestRouteGuardAreaRoles(t *testing.T) {
	alpha := &tenancy.School{ID: uuid.New(), Name: "Alpha", Slug: "alpha", Status: tenancy.StatusActive}
	store := newGuardStore(alpha)

	teacher := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleTeacher, SchoolID: &alpha.ID, SchoolSlug: "alpha"}
	platform := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RolePlatformAdmin}

	tests := []struct {
		name     string
		p        *tenancy.Principal
		path     string
		wantCode int
		wantLoc  string
	}{
		{"Teacher in teachers area", teacher, "/teachers/reports", http.StatusOK, ""},
		{"Teacher denied admin area", teacher, "/admin/students", http.StatusFound, "/admin/login?reason=access_denied"},
		{"Teacher denied super-admin area", teacher, "/super-admin/schools", http.StatusFound, "/super-admin/login?reason=access_denied"},
		{"Teacher in legacy teachers section", teacher, "/alpha/teachers/reports", http.StatusOK, ""},
		{"Teacher denied legacy admin section", teacher, "/alpha/admin/reports", http.StatusFound, "/admin/login?reason=access_denied"},
		{"Platform admin passes every area", platform, "/admin/students", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, guardRouter(store, true, tt.p), tt.path)
			if w.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (location %q)", tt.wantCode, w.Code, w.Header().Get("Location"))
			}
			if tt.wantLoc != "" {
				assertRedirect(t, w, tt.wantLoc)
			}
		})
	}
}

// A session bound to one school must never pass a path naming another, even
// when the role would otherwise fit the area.
func TestRouteGuardSlugMismatch(t *testing.T) {
	alpha := &tenancy.School{ID: uuid.New(), Name: "Alpha", Slug: "alpha", Status: tenancy.StatusActive}
	beta := &tenancy.School{ID: uuid.New(), Name: "Beta", Slug: "beta", Status: tenancy.StatusActive}
	store := newGuardStore(alpha, beta)

	alphaAdmin := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &alpha.ID, SchoolSlug: "alpha"}
	r := guardRouter(store, true, alphaAdmin)

	assertRedirect(t, doGet(t, r, "/beta/admin/reports"), "/admin/login?reason=access_denied")
	assertRedirect(t, doGet(t, r, "/schools/beta/students"), "/login?reason=access_denied")

	if w := doGet(t, r, "/alpha/admin/reports"); w.Code != http.StatusOK {
		t.Errorf("own-school path should pass, got %d", w.Code)
	}
}

func TestRouteGuardSchoolStatus(t *testing.T) {
	statuses := []struct {
		status  tenancy.SchoolStatus
		wantLoc string
	}{
		{tenancy.StatusSuspended, "/school-status?state=suspended&reason=school_inactive"},
		{tenancy.StatusExpired, "/school-status?state=expired&reason=school_inactive"},
		{tenancy.StatusCancelled, "/school-status?state=cancelled&reason=school_inactive"},
		{tenancy.StatusInactive, "/school-status?state=inactive&reason=school_inactive"},
	}

	for _, tt := range statuses {
		t.Run(string(tt.status), func(t *testing.T) {
			school := &tenancy.School{ID: uuid.New(), Name: "Alpha", Slug: "alpha", Status: tt.status}
			admin := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &school.ID, SchoolSlug: "alpha"}
			r := guardRouter(newGuardStore(school), true, admin)
			assertRedirect(t, doGet(t, r, "/admin/students"), tt.wantLoc)
		})
	}

	t.Run("active passes", func(t *testing.T) {
		school := &tenancy.School{ID: uuid.New(), Name: "Alpha", Slug: "alpha", Status: tenancy.StatusActive}
		admin := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &school.ID, SchoolSlug: "alpha"}
		r := guardRouter(newGuardStore(school), true, admin)
		if w := doGet(t, r, "/admin/students"); w.Code != http.StatusOK {
			t.Errorf("expected 200 for active school, got %d", w.Code)
		}
	})
}

func TestRouteGuardStatusLookupFailure(t *testing.T) {
	schoolID := uuid.New()
	admin := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &schoolID, SchoolSlug: "alpha"}

	failing := newGuardStore()
	failing.err = errors.New("dial tcp: connection refused")

	t.Run("fail open", func(t *testing.T) {
		r := guardRouter(failing, true, admin)
		if w := doGet(t, r, "/admin/students"); w.Code != http.StatusOK {
			t.Errorf("fail-open should let the request through, got %d", w.Code)
		}
	})

	t.Run("fail closed", func(t *testing.T) {
		r := guardRouter(failing, false, admin)
		assertRedirect(t, doGet(t, r, "/admin/students"), "/school-status?state=unavailable&reason=school_inactive")
	})
}

func TestRouteGuardMissingSchoolRow(t *testing.T) {
	// Binding points at a school that no longer exists: a definite answer,
	// not an outage, so fail-open does not apply.
	schoolID := uuid.New()
	admin := &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &schoolID, SchoolSlug: "alpha"}

	r := guardRouter(newGuardStore(), true, admin)
	assertRedirect(t, doGet(t, r, "/admin/students"), "/school-status?state=unknown&reason=school_inactive")
}
