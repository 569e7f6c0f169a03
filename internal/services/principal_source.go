package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/schoolhub/platform/internal/models"
	"github.com/schoolhub/platform/internal/tenancy"
	"gorm.io/gorm"
)

var ErrPrincipalNotFound = errors.New("principal not found")

// PrincipalSource is the per-role lookup capability: one tagged variant per
// role instead of five parallel role-keyed tables. The registry selects a
// source by role tag; every source loads from the users table with its role
// pinned, so a teacher id can never resolve through the admin source.
type PrincipalSource struct {
	Role     tenancy.Role
	FindByID func(ctx context.Context, id uuid.UUID) (*tenancy.Principal, error)
}

// PrincipalRegistry holds one source per role.
type PrincipalRegistry struct {
	sources map[tenancy.Role]PrincipalSource
}

func NewPrincipalRegistry(db *gorm.DB) *PrincipalRegistry {
	roles := []tenancy.Role{
		tenancy.RoleTeacher,
		tenancy.RoleAdmin,
		tenancy.RoleController,
		tenancy.RoleRegistral,
		tenancy.RolePlatformAdmin,
	}

	sources := make(map[tenancy.Role]PrincipalSource, len(roles))
	for _, role := range roles {
		sources[role] = newUserSource(db, role)
	}
	return &PrincipalRegistry{sources: sources}
}

// Source returns the lookup capability for role.
func (r *PrincipalRegistry) Source(role tenancy.Role) (PrincipalSource, bool) {
	src, ok := r.sources[role]
	return src, ok
}

// Find resolves a principal by (role, id) through the matching source.
func (r *PrincipalRegistry) Find(ctx context.Context, role tenancy.Role, id uuid.UUID) (*tenancy.Principal, error) {
	src, ok := r.Source(role)
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return src.FindByID(ctx, id)
}

func newUserSource(db *gorm.DB, role tenancy.Role) PrincipalSource {
	return PrincipalSource{
		Role: role,
		FindByID: func(ctx context.Context, id uuid.UUID) (*tenancy.Principal, error) {
			var user models.User
			err := db.WithContext(ctx).Preload("School").
				Where("id = ? AND role = ? AND is_active = ?", id, string(role), true).
				First(&user).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrPrincipalNotFound
				}
				return nil, err
			}

			p := &tenancy.Principal{
				ID:       user.ID,
				Role:     role,
				SchoolID: user.SchoolID,
				Code:     user.Code,
			}
			if user.School != nil {
				p.SchoolSlug = user.School.Slug
				p.SchoolName = user.School.Name
			}
			return p, nil
		},
	}
}
