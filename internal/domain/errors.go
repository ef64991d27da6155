package domain

import (
	"errors"
	"fmt"
)

// UserErrorMessage is the single message shown for any failed backend call.
const UserErrorMessage = "An error occurred while processing your request. Please try again later."

// Sentinel errors for the domain layer.
var (
	ErrRequestFailed  = fmt.Errorf("request failed")
	ErrNetwork        = fmt.Errorf("network error")
	ErrCancelled      = fmt.Errorf("request cancelled")
	ErrValidationSkip = fmt.Errorf("input below minimum length")
	ErrCircuitOpen    = fmt.Errorf("backend circuit open")
	ErrConfigLoad     = fmt.Errorf("failed to load configuration")
	ErrInvalidInput   = fmt.Errorf("invalid input")
	ErrDecryption     = fmt.Errorf("decryption failed")
	ErrSessionClosed  = fmt.Errorf("session closed")
)

// RequestError carries the HTTP status of a non-2xx backend response.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: status %d: %s", ErrRequestFailed, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: status %d", ErrRequestFailed, e.Status)
}

func (e *RequestError) Unwrap() error { return ErrRequestFailed }

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "Grammar.ApplyStyle")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsCancelled reports whether err represents a superseded or aborted request.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// ErrorCode is a machine-parseable error category for logs.
type ErrorCode string

const (
	CodeUnknown        ErrorCode = "UNKNOWN"
	CodeRequestFailed  ErrorCode = "REQUEST_FAILED"
	CodeNetwork        ErrorCode = "NETWORK_ERROR"
	CodeCancelled      ErrorCode = "CANCELLED"
	CodeValidationSkip ErrorCode = "VALIDATION_SKIP"
	CodeCircuitOpen    ErrorCode = "CIRCUIT_OPEN"
	CodeConfigLoad     ErrorCode = "CONFIG_LOAD"
	CodeInvalidInput   ErrorCode = "INVALID_INPUT"
	CodeDecryption     ErrorCode = "DECRYPTION"
	CodeSessionClosed  ErrorCode = "SESSION_CLOSED"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
// Checked in order; the first match wins.
var errorCodeMap = []struct {
	err  error
	code ErrorCode
}{
	{ErrCancelled, CodeCancelled},
	{ErrCircuitOpen, CodeCircuitOpen},
	{ErrRequestFailed, CodeRequestFailed},
	{ErrNetwork, CodeNetwork},
	{ErrValidationSkip, CodeValidationSkip},
	{ErrConfigLoad, CodeConfigLoad},
	{ErrInvalidInput, CodeInvalidInput},
	{ErrDecryption, CodeDecryption},
	{ErrSessionClosed, CodeSessionClosed},
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}
	for _, e := range errorCodeMap {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return CodeUnknown
}
