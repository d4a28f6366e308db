package terminal

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by operations that require an initialized
// terminal session.
var ErrNotConnected = errors.New("not connected to terminal")

// Error is a failure reported by the terminal, carrying its native error
// code when one is known.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
	}
	return e.Message
}

// NewError builds a terminal Error from a native code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// ConnectionError is a failure to establish or keep a terminal session.
type ConnectionError struct {
	Err *Error
}

func (e *ConnectionError) Error() string { return "connection: " + e.Err.Error() }
func (e *ConnectionError) Unwrap() error { return e.Err }

// OrderError is a failure of a trade operation.
type OrderError struct {
	Err *Error
}

func (e *OrderError) Error() string { return "order: " + e.Err.Error() }
func (e *OrderError) Unwrap() error { return e.Err }

// ValidationError is a client-side rejection raised before the request
// reaches the terminal.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// ErrorCode extracts the terminal error code from err, or 0 when err does
// not wrap a terminal Error.
func ErrorCode(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return 0
}
