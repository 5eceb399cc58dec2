package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrCompanyNotFound is returned when a company is not found.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrEmailAlreadyExists is returned when the email is already registered.
	ErrEmailAlreadyExists = errors.New("email already registered")
	// ErrInvalidRole is returned when a role outside the known set is requested.
	ErrInvalidRole = errors.New("invalid role")
	// ErrForbidden is returned when the caller may not act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72 bytes).
	ErrPasswordTooLong = errors.New("password must be at most 72 bytes")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are matched with errors.Is.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrCompanyNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCompanyNotFound.Error(), "COMPANY_NOT_FOUND")
	case errors.Is(err, ErrEmailAlreadyExists):
		return NewHTTPError(http.StatusConflict, ErrEmailAlreadyExists.Error(), "EMAIL_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidRole.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, ErrPasswordTooLong.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
