package tenancy

import "errors"

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrRoleForbidden     = errors.New("role not permitted")
	ErrTenantRequired    = errors.New("tenant route requires a resolved school")
	ErrTenantMismatch    = errors.New("path school does not match session school")
	ErrOwnershipDenied   = errors.New("record not found")
	ErrSchoolInactive    = errors.New("school is not active")
	ErrLookupUnavailable = errors.New("school lookup unavailable")
)
