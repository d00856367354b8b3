// Package errors defines the structured error kinds surfaced at the
// pipeline boundary. A detector that fails is reported as such, never
// silently converted into an empty detection.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies a pipeline error.
type Code string

const (
	// CodeInvalidImage marks unreadable or corrupt image input.
	CodeInvalidImage Code = "INVALID_IMAGE"
	// CodeDetectionUnavailable marks a detector or OCR backend that
	// failed or returned a malformed result.
	CodeDetectionUnavailable Code = "DETECTION_UNAVAILABLE"
	// CodeDimensionMismatch marks a detection shape with a zero
	// dimension, which makes coordinate scaling undefined.
	CodeDimensionMismatch Code = "DIMENSION_MISMATCH"
	// CodeBusy marks a rejected request while another detection or
	// physical action holds the exclusion gate.
	CodeBusy Code = "BUSY"
	// CodeTimeout marks a detector call that exceeded its deadline.
	CodeTimeout Code = "TIMEOUT"
	// CodeStoreFailed marks a failure persisting results.
	CodeStoreFailed Code = "STORE_FAILED"
	// CodeExecFailed marks a failed physical input action.
	CodeExecFailed Code = "EXEC_FAILED"
)

// Error is a structured pipeline error with a classification code.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a structured error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// CodeOf extracts the classification code from an error chain. Errors
// without a structured code report CodeDetectionUnavailable as the most
// conservative classification.
func CodeOf(err error) Code {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return CodeDetectionUnavailable
}

// Is reports whether the error chain carries the given code.
func Is(err error, code Code) bool {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
