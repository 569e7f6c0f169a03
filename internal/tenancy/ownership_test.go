package tenancy

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAssertOwnership(t *testing.T) {
	schoolA := uuid.New()
	schoolB := uuid.New()

	platformCtx := &TenantContext{IsPlatformAdmin: true}
	legacyCtx := &TenantContext{IsLegacyTenant: true}
	schoolACtx := &TenantContext{SchoolID: &schoolA, SchoolSlug: "alpha"}

	tests := []struct {
		name     string
		resource *uuid.UUID
		tc       *TenantContext
		wantErr  error
	}{
		{"Platform admin reaches tenant record", &schoolB, platformCtx, nil},
		{"Platform admin reaches legacy record", nil, platformCtx, nil},
		{"Legacy tenant reaches legacy record", nil, legacyCtx, nil},
		{"Legacy tenant denied tenant record", &schoolA, legacyCtx, ErrOwnershipDenied},
		{"School tenant reaches own record", &schoolA, schoolACtx, nil},
		{"School tenant denied other tenant", &schoolB, schoolACtx, ErrOwnershipDenied},
		{"School tenant denied legacy record", nil, schoolACtx, ErrOwnershipDenied},
		{"Nil context fails closed", &schoolA, nil, ErrOwnershipDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertOwnership(tt.resource, tt.tc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestScopeFilter(t *testing.T) {
	schoolA := uuid.New()

	tests := []struct {
		name       string
		tc         *TenantContext
		wantScope  Scope
		wantSchool *uuid.UUID
	}{
		{"Platform admin unscoped", &TenantContext{IsPlatformAdmin: true}, ScopeAll, nil},
		{"Legacy scoped to null", &TenantContext{IsLegacyTenant: true}, ScopeLegacy, nil},
		{"School scoped to id", &TenantContext{SchoolID: &schoolA}, ScopeSchool, &schoolA},
		{"Unresolved tenant scoped to nothing", &TenantContext{SchoolSlug: "ghost"}, ScopeNone, nil},
		{"Nil context scoped to nothing", nil, ScopeNone, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, schoolID := ScopeFilter(tt.tc)
			if scope != tt.wantScope {
				t.Fatalf("scope = %v, want %v", scope, tt.wantScope)
			}
			switch {
			case tt.wantSchool == nil && schoolID != nil:
				t.Errorf("expected nil school id, got %v", *schoolID)
			case tt.wantSchool != nil && (schoolID == nil || *schoolID != *tt.wantSchool):
				t.Errorf("expected %v, got %v", tt.wantSchool, schoolID)
			}
		})
	}
}

// Rows admitted by the read filter and records passed by the write check must
// agree: a record a tenant can list is a record it can mutate, and vice versa.
func TestScopeFilterMatchesAssertOwnership(t *testing.T) {
	schoolA := uuid.New()
	schoolB := uuid.New()

	contexts := map[string]*TenantContext{
		"platform":   {IsPlatformAdmin: true},
		"legacy":     {IsLegacyTenant: true},
		"schoolA":    {SchoolID: &schoolA, SchoolSlug: "alpha"},
		"unresolved": {SchoolSlug: "ghost"},
	}
	records := map[string]*uuid.UUID{
		"legacy record":  nil,
		"schoolA record": &schoolA,
		"schoolB record": &schoolB,
	}

	for ctxName, tc := range contexts {
		for recName, rec := range records {
			scope, schoolID := ScopeFilter(tc)

			var admitted bool
			switch scope {
			case ScopeAll:
				admitted = true
			case ScopeLegacy:
				admitted = rec == nil
			case ScopeSchool:
				admitted = rec != nil && *rec == *schoolID
			case ScopeNone:
				admitted = false
			}

			owned := AssertOwnership(rec, tc) == nil
			if admitted != owned {
				t.Errorf("%s / %s: filter admits=%v but ownership passes=%v", ctxName, recName, admitted, owned)
			}
		}
	}
}
