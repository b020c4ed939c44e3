package clientes

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories. Every domain error wraps exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrDependency = errors.New("dependency failure")
)

// Domain errors for cliente operations.
var (
	ErrInvalidKey           = fmt.Errorf("%w: invalid cliente key", ErrValidation)
	ErrInvalidName          = fmt.Errorf("%w: name must be between 2 and 100 characters", ErrValidation)
	ErrInvalidPhone         = fmt.Errorf("%w: phone must be exactly 10 characters", ErrValidation)
	ErrInvalidEmail         = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrInvalidCharacterIcon = fmt.Errorf("%w: invalid character icon", ErrValidation)
	ErrInvalidPage          = fmt.Errorf("%w: invalid page", ErrValidation)
	ErrInvalidRequest       = fmt.Errorf("%w: malformed request", ErrValidation)
	ErrAlreadyExists        = fmt.Errorf("%w: cliente already exists", ErrConflict)
	ErrClienteNotExists     = fmt.Errorf("%w: cliente does not exist", ErrNotFound)
)

// MapHTTPStatus maps cliente domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func invalidIcon(raw any) error {
	return fmt.Errorf("%w: %q must be a number from 0 to 9", ErrInvalidCharacterIcon, fmt.Sprint(raw))
}

func invalidPage(totalPages int) error {
	return fmt.Errorf("%w: must be between 1 and %d", ErrInvalidPage, totalPages)
}

func alreadyExists(key string) error {
	return fmt.Errorf("%w: key %s", ErrAlreadyExists, key)
}

func notExists(key string) error {
	return fmt.Errorf("%w: key %s", ErrClienteNotExists, key)
}

func dependency(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDependency, op, err)
}
