package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is an error that maps onto an HTTP response
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Reason  string       `json:"reason,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError is a validation error for one input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid email or password"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
	ErrTenantRequired     = &AppError{Code: http.StatusBadRequest, Message: "Tenant context required"}
)

// New creates an application error
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a cause to a new application error
func Wrap(code int, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, cause: cause}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: resource + " not found"}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewBadRequestf(format string, args ...interface{}) *AppError {
	return NewBadRequestError(fmt.Sprintf(format, args...))
}

// NewValidationError reports per-field problems
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewRejection reports a business rule that refused the request. Reason is a
// stable machine-readable code such as "coupon_expired".
func NewRejection(reason, message string) *AppError {
	return &AppError{Code: http.StatusUnprocessableEntity, Message: message, Reason: reason}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts any error to an AppError. Unknown errors become a
// generic 500 so internal details are not leaked to clients.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(http.StatusInternalServerError, ErrInternalServer.Message, err)
}
