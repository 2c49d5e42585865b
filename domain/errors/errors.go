// Package errors provides the structured error taxonomy for the SDK.
// All error types support unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
)

// Kind categorizes a StructuredError for callers that branch on failure class.
type Kind string

const (
	// KindInvalidConfiguration marks a bad or missing library path.
	KindInvalidConfiguration Kind = "invalid_configuration"

	// KindNotInitialized marks a call issued before the runtime binding is
	// ready or after shutdown has begun.
	KindNotInitialized Kind = "not_initialized"

	// KindSubmissionFailure marks an immediate non-zero status returned by a
	// native call at submit time.
	KindSubmissionFailure Kind = "submission_failure"

	// KindCallbackFailure marks a non-zero error code delivered through a
	// completion callback.
	KindCallbackFailure Kind = "callback_failure"

	// KindProtocolViolation marks a callback that arrived for an unknown or
	// already-resolved correlation token. Never surfaced to callers; recorded
	// for diagnostics only.
	KindProtocolViolation Kind = "protocol_violation"

	// KindHandleReleased marks an operation attempted on a handle the local
	// registry knows to be released.
	KindHandleReleased Kind = "handle_released"
)

// StructuredError is the single error shape surfaced to SDK callers.
// Submission-time and callback-time failures share this shape; callers cannot
// and need not distinguish where in the call's lifetime the code was produced.
type StructuredError struct {
	// Message is the human-readable description resolved from the native
	// layer's code lookup, or a local description for SDK-side failures.
	Message string

	// NativeFunc names the native entry point the failed operation targeted.
	// Empty for failures that never reached the native layer.
	NativeFunc string

	// Kind categorizes the failure.
	Kind Kind

	// Code is the numeric native error code. Zero for SDK-side failures.
	Code uint32
}

func (e *StructuredError) Error() string {
	switch {
	case e.NativeFunc != "" && e.Code != 0:
		return fmt.Sprintf("%s: %s failed with code %d: %s", e.Kind, e.NativeFunc, e.Code, e.Message)
	case e.NativeFunc != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.NativeFunc, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Is reports kind (and, when set, code) equality so callers can match with
// errors.Is against a bare template, e.g.
// errors.Is(err, &StructuredError{Kind: KindNotInitialized}).
func (e *StructuredError) Is(target error) bool {
	var se *StructuredError
	if !stdErrors.As(target, &se) {
		return false
	}
	if se.Kind != "" && se.Kind != e.Kind {
		return false
	}
	if se.Code != 0 && se.Code != e.Code {
		return false
	}
	return true
}

// MessageLookup resolves a native error code to a human-readable message.
// Implementations must be total: a failed lookup yields an empty string,
// never a second error.
type MessageLookup func(code uint32) string

// NewInvalidConfiguration creates an InvalidConfiguration error.
func NewInvalidConfiguration(format string, args ...any) *StructuredError {
	return &StructuredError{
		Kind:    KindInvalidConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotInitialized creates a NotInitialized error for the named operation.
func NewNotInitialized(op string) *StructuredError {
	return &StructuredError{
		Kind:       KindNotInitialized,
		NativeFunc: op,
		Message:    "runtime binding is not ready",
	}
}

// NewHandleReleased creates a HandleReleased error for a locally released handle.
func NewHandleReleased(op string, id uint32) *StructuredError {
	return &StructuredError{
		Kind:       KindHandleReleased,
		NativeFunc: op,
		Message:    fmt.Sprintf("handle %d has been released", id),
	}
}

// Translate converts a native error code into a StructuredError, resolving the
// message through lookup. Code zero translates to nil: success carries no error.
// The same translation path serves immediate submission statuses and
// callback-delivered codes; kind records which leg produced the code.
func Translate(kind Kind, nativeFunc string, code uint32, lookup MessageLookup) *StructuredError {
	if code == 0 {
		return nil
	}
	msg := ""
	if lookup != nil {
		msg = lookup(code)
	}
	if msg == "" {
		msg = "native error"
	}
	return &StructuredError{
		Kind:       kind,
		NativeFunc: nativeFunc,
		Code:       code,
		Message:    msg,
	}
}

// AsStructured extracts a StructuredError from an error chain, if present.
func AsStructured(err error) (*StructuredError, bool) {
	var se *StructuredError
	ok := stdErrors.As(err, &se)
	return se, ok
}
