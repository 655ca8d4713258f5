package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that carry their own HTTP status code. Error
// handling checks for it after the sentinel matches, so structured errors
// like ConflictError map without per-type cases.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrRefused marks local policy refusals: the operation was rejected
	// before any remote mutation was attempted.
	ErrRefused = errors.New("refused by policy")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, folder, notification)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// FolderNotEmptyError is the refusal raised when deleting a folder that still
// has children. It is a policy refusal, not a remote failure: the delete is
// never issued against the store.
type FolderNotEmptyError struct {
	FolderID   string
	ChildCount int
}

// Error implements the error interface
func (e *FolderNotEmptyError) Error() string {
	return fmt.Sprintf("folder %s is not empty (%d items); only empty folders can be deleted", e.FolderID, e.ChildCount)
}

// StatusCode implements the HTTPError interface
func (e *FolderNotEmptyError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrRefused
func (e *FolderNotEmptyError) Is(target error) bool {
	return target == ErrRefused
}
