package tenancy

import "github.com/google/uuid"

// Role is the closed set of principal roles.
type Role string

const (
	RoleTeacher       Role = "teacher"
	RoleAdmin         Role = "admin"
	RoleController    Role = "controller"
	RoleRegistral     Role = "registral"
	RolePlatformAdmin Role = "platform_admin"
)

// ValidRole reports whether r belongs to the closed role set.
func ValidRole(r Role) bool {
	switch r {
	case RoleTeacher, RoleAdmin, RoleController, RoleRegistral, RolePlatformAdmin:
		return true
	}
	return false
}

// Principal is the authenticated identity attached to a request by the
// session service. SchoolID and SchoolSlug are bound at session issuance;
// both are nil/empty for platform admins. Treated as immutable input.
type Principal struct {
	ID         uuid.UUID
	Role       Role
	SchoolID   *uuid.UUID
	SchoolSlug string
	SchoolName string
	Code       string
}
