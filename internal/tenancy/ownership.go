package tenancy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssertOwnership checks a stored record's owning school against a validated
// context before mutation:
//
//	platform admin            -> any record
//	legacy tenant             -> only records with a nil school_id
//	school tenant             -> only records owned by that school
//
// A violation returns ErrOwnershipDenied, which callers must surface exactly
// like "not found" so responses never reveal that another tenant's record
// exists. Uncertain comparisons fail closed.
func AssertOwnership(resourceSchoolID *uuid.UUID, tc *TenantContext) error {
	if tc == nil {
		return ErrOwnershipDenied
	}
	if tc.IsPlatformAdmin {
		return nil
	}
	if tc.IsLegacyTenant {
		if resourceSchoolID == nil {
			return nil
		}
		return ErrOwnershipDenied
	}
	if tc.SchoolID == nil || resourceSchoolID == nil {
		return ErrOwnershipDenied
	}
	if *resourceSchoolID != *tc.SchoolID {
		return ErrOwnershipDenied
	}
	return nil
}

// Scope classifies how a tenant-owned read must be filtered.
type Scope int

const (
	// ScopeAll runs the query unscoped; platform admins only.
	ScopeAll Scope = iota
	// ScopeLegacy admits only records with a nil school_id.
	ScopeLegacy
	// ScopeSchool admits only records owned by one school.
	ScopeSchool
	// ScopeNone admits nothing. Contexts that resolved to no tenant at all
	// fail closed, the same way AssertOwnership denies them.
	ScopeNone
)

// ScopeFilter returns the school_id predicate for tenant-owned reads. For
// ScopeSchool the second return is the owning school. Rows admitted by the
// filter always pass AssertOwnership and vice versa.
func ScopeFilter(tc *TenantContext) (Scope, *uuid.UUID) {
	switch {
	case tc == nil:
		return ScopeNone, nil
	case tc.IsPlatformAdmin:
		return ScopeAll, nil
	case tc.IsLegacyTenant:
		return ScopeLegacy, nil
	case tc.SchoolID != nil:
		return ScopeSchool, tc.SchoolID
	default:
		return ScopeNone, nil
	}
}

// Scoped applies ScopeFilter as a gorm scope, for building tenant-safe list
// queries.
func Scoped(tc *TenantContext) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		scope, schoolID := ScopeFilter(tc)
		switch scope {
		case ScopeAll:
			return db
		case ScopeLegacy:
			return db.Where("school_id IS NULL")
		case ScopeSchool:
			return db.Where("school_id = ?", *schoolID)
		default:
			return db.Where("1 = 0")
		}
	}
}
