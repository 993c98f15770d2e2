package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode standardizes failure semantics across the course aggregate
// (course, structure tree, resources).
type ErrorCode string

const (
	CodeValidation         ErrorCode = "validation"
	CodeNotFound           ErrorCode = "not_found"
	CodeUnauthorized       ErrorCode = "unauthorized"
	CodeForbidden          ErrorCode = "forbidden"
	CodeConflict           ErrorCode = "conflict"
	CodeInvariantViolation ErrorCode = "invariant_violation"
	CodePreconditionFailed ErrorCode = "precondition_failed"
	CodeRetryable          ErrorCode = "retryable"
	CodeInternal           ErrorCode = "internal"
)

// Error is the canonical domain error wrapper. Reason is an optional
// machine-readable refinement of Code (e.g. "structure_exists").
type Error struct {
	Code    ErrorCode
	Reason  string
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	code := string(e.Code)
	if e.Reason != "" {
		code = e.Reason
	}
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, code)
	default:
		return code
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a domain error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// Sentinel builds a comparable error for errors.Is checks.
func Sentinel(code ErrorCode, reason, message string) *Error {
	return &Error{Code: code, Reason: reason, Message: message}
}

// Wrap annotates an existing error with domain error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the outermost error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// ReasonOf returns the first non-empty Reason along the wrap chain.
func ReasonOf(err error) string {
	for err != nil {
		var aggErr *Error
		if !errors.As(err, &aggErr) {
			return ""
		}
		if aggErr.Reason != "" {
			return aggErr.Reason
		}
		err = aggErr.Cause
	}
	return ""
}
