package domain

import (
	"errors"
	"fmt"
)

// Error kinds shared by every service. Callers wrap them with fmt.Errorf("%w: ...")
// and the transport layer maps them to status codes with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrFileUpload   = errors.New("file upload error")
	ErrGeolocation  = errors.New("geolocation error")
	ErrDatabase     = errors.New("database error")

	ErrExternalService = errors.New("external service error")

	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrValidation)
	ErrFileTooLarge      = fmt.Errorf("%w: file too large", ErrFileUpload)
)

// ExternalServiceError reports a failed call to a third-party provider.
type ExternalServiceError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("error in %s: %s", e.Provider, e.Message)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}

// NotFoundf builds a not-found error in the "<resource> with id '<id>' not found" shape.
func NotFoundf(resource, id string) error {
	return fmt.Errorf("%w: %s with id '%s' not found", ErrNotFound, resource, id)
}

// ValidationError carries field level details alongside ErrValidation.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
