// Package types provides shared types, interfaces, and errors for the application.
package types

import "errors"

// Sentinel errors for consistent error handling across the application.
// These errors can be checked with errors.Is() for type-safe error handling.
var (
	// Animation errors
	ErrDriveAborted  = errors.New("scroll animation aborted")
	ErrSuperseded    = errors.New("scroll animation superseded by a newer request")
	ErrUnknownEasing = errors.New("unknown easing function")

	// Target errors
	ErrInvalidTarget = errors.New("invalid scroll target")

	// Page errors
	ErrPageClosed      = errors.New("page is closed")
	ErrElementNotFound = errors.New("scroll container not found")
)

// ScrollError provides detailed information about a failed scroll operation.
// It implements the error interface and supports error unwrapping.
type ScrollError struct {
	Op     string // Operation: "resolve", "start", "drive"
	Target string // Human-readable target description
	Err    error  // Underlying error (for unwrapping)
}

// Error implements the error interface.
func (e *ScrollError) Error() string {
	msg := "scroll " + e.Op
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ScrollError) Unwrap() error {
	return e.Err
}

// NewAbortedError creates an error for an animation whose drive was aborted.
func NewAbortedError(target string, cause error) *ScrollError {
	return &ScrollError{
		Op:     "drive",
		Target: target,
		Err:    joinCause(ErrDriveAborted, cause),
	}
}

// NewSupersededError creates an error for an animation canceled by a newer request.
func NewSupersededError(target string) *ScrollError {
	return &ScrollError{
		Op:     "drive",
		Target: target,
		Err:    errors.Join(ErrDriveAborted, ErrSuperseded),
	}
}

// NewResolveError creates an error for a target that could not be measured.
func NewResolveError(target string, err error) *ScrollError {
	return &ScrollError{
		Op:     "resolve",
		Target: target,
		Err:    err,
	}
}

func joinCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	if errors.Is(cause, sentinel) {
		return cause
	}
	return errors.Join(sentinel, cause)
}
