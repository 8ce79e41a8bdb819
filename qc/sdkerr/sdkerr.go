// Package sdkerr is the SDK-wide error-kind taxonomy: every fallible
// operation in qc/... wraps its root cause in one of these Kinds so
// callers (the CLI, the session dispatcher, the remote protocol) can
// branch on what went wrong without string-matching error messages.
package sdkerr

import (
	"errors"
	"fmt"
)

// Kind classifies an SDKError. Kinds are intentionally coarse — they
// drive retry/exit-code decisions, not detailed diagnostics (the
// wrapped error carries those).
type Kind int

const (
	_ Kind = iota
	ValidationError
	CompileError
	PlacementError
	BackendUnavailable
	RemoteTransient
	RemoteFatal
	PartialResult
	Cancelled
	NumericWarning
)

func (k Kind) String() string {
	switch k {
	case ValidationError:
		return "ValidationError"
	case CompileError:
		return "CompileError"
	case PlacementError:
		return "PlacementError"
	case BackendUnavailable:
		return "BackendUnavailable"
	case RemoteTransient:
		return "RemoteTransient"
	case RemoteFatal:
		return "RemoteFatal"
	case PartialResult:
		return "PartialResult"
	case Cancelled:
		return "Cancelled"
	case NumericWarning:
		return "NumericWarning"
	default:
		return "Unknown"
	}
}

// SDKError carries a Kind alongside the wrapped cause, and an optional
// Component tag (e.g. "qc/pass/placement") for logging.
type SDKError struct {
	Kind      Kind
	Component string
	Err       error
}

func (e *SDKError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SDKError) Unwrap() error { return e.Err }

// New wraps err under kind, optionally tagging it with a component name.
func New(kind Kind, err error, component string) *SDKError {
	return &SDKError{Kind: kind, Component: component, Err: err}
}

// Newf is New with a formatted message instead of a wrapped error.
func Newf(kind Kind, component, format string, args ...interface{}) *SDKError {
	return &SDKError{Kind: kind, Component: component, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind of err if it (or something it wraps) is an
// *SDKError; ok is false otherwise.
func KindOf(err error) (kind Kind, ok bool) {
	var se *SDKError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return 0, false
}

// Retryable reports whether an error of this kind should be retried by
// the remote-protocol state machine or the session dispatcher.
func (k Kind) Retryable() bool {
	switch k {
	case RemoteTransient, BackendUnavailable:
		return true
	default:
		return false
	}
}
