// internal/models/errors.go
package models

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by services. Handlers map these to HTTP status codes;
// anything else is treated as an internal error.

type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with ID %d not found", e.Resource, e.ID)
}

func NewNotFoundError(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// NewFieldValidationError carries per-field messages so handlers can return
// structured details instead of one flattened string.
func NewFieldValidationError(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// DependencyError wraps a failure in an external collaborator (provider API,
// notification channel). Notification dispatch logs and swallows these; they
// must never fail the originating price write.
type DependencyError struct {
	Service string
	Err     error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("external service %q error: %v", e.Service, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

func NewDependencyError(service string, err error) error {
	return &DependencyError{Service: service, Err: err}
}

func IsDependency(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
