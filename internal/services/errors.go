package services

import (
	"errors"

	goa "goa.design/goa/v3/pkg"

	apperrors "fasplanners/pkg/errors"
)

// Error names carried by *goa.ServiceError and mapped to HTTP statuses by the transport
const (
	ErrNameBadRequest = "bad_request"
	ErrNameNotFound   = "not_found"
	ErrNameConflict   = "conflict"
	ErrNameForbidden  = "forbidden"
)

// BadRequest creates a properly formatted bad request error
func BadRequest(message string) *goa.ServiceError {
	return goa.NewServiceError(errors.New(message), ErrNameBadRequest, false, false, false)
}

// NotFound creates a properly formatted not found error
func NotFound(message string) *goa.ServiceError {
	return goa.NewServiceError(errors.New(message), ErrNameNotFound, false, false, false)
}

// Conflict creates a properly formatted conflict error, marked temporary
func Conflict(message string) *goa.ServiceError {
	return goa.NewServiceError(errors.New(message), ErrNameConflict, false, true, false)
}

// Forbidden creates a properly formatted forbidden error
func Forbidden(message string) *goa.ServiceError {
	return goa.NewServiceError(errors.New(message), ErrNameForbidden, false, false, false)
}

// fromAppError converts store errors into service errors. Errors without a
// client-facing code are returned unchanged and reported as server faults.
func fromAppError(err error, notFoundMessage string) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Code {
	case apperrors.ErrCodeNotFound:
		return NotFound(notFoundMessage)
	case apperrors.ErrCodeValidation, apperrors.ErrCodeBadRequest:
		return BadRequest(appErr.Message)
	case apperrors.ErrCodeConflict:
		return Conflict(appErr.Message)
	}
	return err
}
