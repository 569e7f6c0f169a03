package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/tenancy"
)

func TestClaimsPrincipal(t *testing.T) {
	userID := uuid.New()
	schoolID := uuid.New()

	tests := []struct {
		name   string
		claims *Claims
		check  func(t *testing.T, p *tenancy.Principal)
	}{
		{
			"School-bound admin",
			&Claims{UserID: userID, SchoolID: &schoolID, SchoolSlug: "alpha", SchoolName: "Alpha", Role: "admin", Email: "admin@alpha.test"},
			func(t *testing.T, p *tenancy.Principal) {
				if p.Role != tenancy.RoleAdmin {
					t.Errorf("expected admin role, got %q", p.Role)
				}
				if p.SchoolID == nil || *p.SchoolID != schoolID {
					t.Errorf("expected school binding, got %v", p.SchoolID)
				}
				if p.SchoolSlug != "alpha" {
					t.Errorf("expected slug alpha, got %q", p.SchoolSlug)
				}
			},
		},
		{
			"Platform admin carries no school",
			&Claims{UserID: userID, Role: "platform_admin", Email: "root@schoolhub.test"},
			func(t *testing.T, p *tenancy.Principal) {
				if p.Role != tenancy.RolePlatformAdmin {
					t.Errorf("expected platform_admin role, got %q", p.Role)
				}
				if p.SchoolID != nil {
					t.Errorf("expected nil school binding, got %v", p.SchoolID)
				}
			},
		},
		{
			"Legacy teacher with code",
			&Claims{UserID: userID, Role: "teacher", Code: "T-031"},
			func(t *testing.T, p *tenancy.Principal) {
				if p.Role != tenancy.RoleTeacher {
					t.Errorf("expected teacher role, got %q", p.Role)
				}
				if p.Code != "T-031" {
					t.Errorf("expected code carried over, got %q", p.Code)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.claims.Principal()
			if p.ID != userID {
				t.Fatalf("expected user id %s, got %s", userID, p.ID)
			}
			tt.check(t, p)
		})
	}
}
