package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrNotAuthenticated is returned when a mutation runs without an active session.
	ErrNotAuthenticated = errors.New("you must be logged in to manage bookmarks")

	// ErrGateway matches every *GatewayError.
	ErrGateway = errors.New("gateway call failed")

	// ErrChannelInterrupted marks a dropped change-notification channel.
	// It degrades a session, it is never shown to the user.
	ErrChannelInterrupted = errors.New("change channel interrupted")

	// ErrNoPendingDelete is returned when a delete is confirmed without a
	// matching, unexpired request.
	ErrNoPendingDelete = errors.New("no pending delete for this bookmark")
)

// ValidationError reports bad user input, detected before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// GatewayError wraps a failed backend call. Error returns the backend
// message unchanged so it can be shown as-is.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	if e.Err == nil {
		return e.Op + " failed"
	}
	return e.Err.Error()
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// NewGatewayError wraps err unless it already belongs to the taxonomy.
func NewGatewayError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrValidation) || errors.Is(err, ErrGateway) {
		return err
	}
	return &GatewayError{Op: op, Err: err}
}
