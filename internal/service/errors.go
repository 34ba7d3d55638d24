package service

import (
	"fmt"
	"net/http"

	"github.com/smallbiznis/valora-notes/internal/domain"
)

// Error carries a machine-readable code and the HTTP status the
// transport should use. It wraps the matching domain sentinel so
// callers can test with errors.Is.
type Error struct {
	Code        string
	Description string
	Status      int
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func errUnauthenticated(desc string) *Error {
	return &Error{Code: "unauthorized", Description: desc, Status: http.StatusUnauthorized, Err: domain.ErrUnauthenticated}
}

func errForbidden(desc string) *Error {
	return &Error{Code: "forbidden", Description: desc, Status: http.StatusForbidden, Err: domain.ErrForbidden}
}

func errNotFound(desc string) *Error {
	return &Error{Code: "not_found", Description: desc, Status: http.StatusNotFound, Err: domain.ErrNotFound}
}

func errConflict(desc string) *Error {
	return &Error{Code: "conflict", Description: desc, Status: http.StatusConflict, Err: domain.ErrDuplicateEmail}
}

func errInvalidInput(desc string) *Error {
	return &Error{Code: "invalid_request", Description: desc, Status: http.StatusBadRequest, Err: domain.ErrInvalidInput}
}

func errQuotaExceeded(desc string) *Error {
	return &Error{Code: "quota_exceeded", Description: desc, Status: http.StatusForbidden, Err: domain.ErrQuotaExceeded}
}
