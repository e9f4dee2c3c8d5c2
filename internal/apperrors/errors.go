package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrStoreUnavailable is returned by write operations when no store handle is configured.
var ErrStoreUnavailable = errors.New("store unavailable")

// ErrUnauthorized indicates that the request carries no usable session.
var ErrUnauthorized = errors.New("unauthorized")

// AppError pairs an HTTP status with a user-facing message.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewBadRequestError builds a 400 AppError.
func NewBadRequestError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message, Err: ErrValidation}
}

// StoreError is a rejection from the remote store carrying its HTTP status.
// Its message mirrors what the list view shows to the employee.
type StoreError struct {
	Status int
	Detail string
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("Erreur %d", e.Status)
}

// Is lets callers match store rejections against the generic sentinels.
func (e *StoreError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// NewStoreError builds a StoreError for the given status.
func NewStoreError(status int, detail string) *StoreError {
	return &StoreError{Status: status, Detail: detail}
}
