package middleware

import (
	"context"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/tenancy"
)

type countingStore struct {
	inner tenancy.SchoolStore
	calls int64
}

func (s *countingStore) BySlug(ctx context.Context, slug string) (*tenancy.School, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.inner.BySlug(ctx, slug)
}

func (s *countingStore) ByID(ctx context.Context, id uuid.UUID) (*tenancy.School, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.inner.ByID(ctx, id)
}

func TestResolveTenantMemoized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	school := &tenancy.School{ID: uuid.New(), Name: "Alpha", Slug: "alpha", Status: tenancy.StatusActive}
	store := &countingStore{inner: newGuardStore(school)}
	resolver := tenancy.NewResolver(store)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/admin/students", nil)
	SetPrincipal(c, &tenancy.Principal{ID: uuid.New(), Role: tenancy.RoleAdmin, SchoolID: &school.ID, SchoolSlug: "alpha"})

	if _, ok := TenantContext(c); ok {
		t.Fatal("no context should exist before resolution")
	}

	first, err := ResolveTenant(c, resolver)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ResolveTenant(c, resolver)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("repeated resolution must return the memoized context")
	}
	if got := atomic.LoadInt64(&store.calls); got != 1 {
		t.Errorf("expected exactly one store lookup per request, got %d", got)
	}

	cached, ok := TenantContext(c)
	if !ok || cached != first {
		t.Error("TenantContext must expose the memoized value")
	}
}
