package service

import (
	"errors"
	"fmt"
)

// ValidationError rejects a command input locally, before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotReadyError means the setup-time probe could not reach the heater.
// It is fatal to startup; the supervisor is expected to retry setup later.
type NotReadyError struct {
	Err error
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("heater not ready: %v", e.Err)
}

func (e *NotReadyError) Unwrap() error { return e.Err }

// IsNotReady reports whether err is (or wraps) a NotReadyError.
func IsNotReady(err error) bool {
	var ne *NotReadyError
	return errors.As(err, &ne)
}
