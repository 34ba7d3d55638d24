package domain

import "errors"

// Sentinel errors forming the failure taxonomy. Repositories and
// services wrap these; transport maps them to status codes.
var (
	// ErrUnauthenticated covers missing, malformed, or expired tokens.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means a valid identity lacks the role or tenant
	// required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound covers absent resources. Cross-tenant lookups report
	// this too, so callers cannot probe for other tenants' data.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a signup email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidInput covers missing or empty required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuotaExceeded is returned when a free-plan tenant is at its
	// note ceiling.
	ErrQuotaExceeded = errors.New("note quota exceeded")
)
