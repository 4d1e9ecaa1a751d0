package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Failure classes surfaced by the catalog, ledger and request modules. Callers
// discriminate with errors.Is; the wrapped message carries the violated constraint.
var (
	ErrValidation             = errors.New("validation failed")
	ErrPermissionDenied       = errors.New("permission denied")
	ErrNotFound               = errors.New("not found")
	ErrConflict               = errors.New("conflict")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrInsufficientStock      = errors.New("insufficient stock")
)

func wrapf(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}

// Validationf reports malformed or out-of-range input
func Validationf(format string, args ...interface{}) error {
	return wrapf(ErrValidation, format, args...)
}

// PermissionDeniedf reports a failed capability check
func PermissionDeniedf(format string, args ...interface{}) error {
	return wrapf(ErrPermissionDenied, format, args...)
}

// NotFoundf reports a missing item, request or location
func NotFoundf(format string, args ...interface{}) error {
	return wrapf(ErrNotFound, format, args...)
}

// Conflictf reports a duplicate code or history blocking a structural change
func Conflictf(format string, args ...interface{}) error {
	return wrapf(ErrConflict, format, args...)
}

// InvalidTransitionf reports a workflow guard failure
func InvalidTransitionf(format string, args ...interface{}) error {
	return wrapf(ErrInvalidStateTransition, format, args...)
}

// InsufficientStockf reports a withdrawal exceeding the available balance,
// including the shortfall so the caller can correct the quantity
func InsufficientStockf(available, requested int64) error {
	return wrapf(ErrInsufficientStock, "available %d, requested %d (short %d)",
		available, requested, requested-available)
}

// HTTPStatus maps a failure class to its HTTP status code
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsBusiness reports whether the failure is terminal business logic rather than
// a storage fault: retrying with the same input cannot change the outcome.
func IsBusiness(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrInvalidStateTransition) ||
		errors.Is(err, ErrInsufficientStock)
}
