// Package errs defines the error kinds a Within session reports.
//
// Each kind is a struct type that also matches a sentinel via errors.Is:
//
//	var perr *errs.ProtocolError
//	if errors.As(err, &perr) { ... }
//	if errors.Is(err, errs.ErrProtocol) { ... }
package errs

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels matched by the error kinds below.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrProtocol      = errors.New("protocol error")
	ErrState         = errors.New("state error")
	ErrTimeout       = errors.New("timeout")
)

// ConfigurationError reports invalid or missing configuration.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// Config returns a ConfigurationError for field.
func Config(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ProtocolError reports any failed exchange with the agent: I/O failure,
// malformed data, or an error the agent returned.
type ProtocolError struct {
	// Op is the operation that failed, e.g. "selectService".
	Op      string
	Message string
	Cause   error
}

func (e *ProtocolError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		return "protocol error: " + msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap returns the cause.
func (e *ProtocolError) Unwrap() error { return e.Cause }

// Is matches ErrProtocol.
func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// Protocol wraps cause as a ProtocolError for op. A cause that already is a
// ProtocolError is returned as is, or as a copy carrying op if its own Op
// was empty.
func Protocol(op string, cause error) *ProtocolError {
	var perr *ProtocolError
	if errors.As(cause, &perr) {
		if perr.Op == "" {
			cp := *perr
			cp.Op = op
			return &cp
		}
		return perr
	}
	pe := &ProtocolError{Op: op, Cause: cause}
	if cause != nil {
		pe.Message = cause.Error()
	}
	return pe
}

// Malformed returns a ProtocolError for a record that cannot be adapted.
func Malformed(op, format string, args ...any) *ProtocolError {
	return &ProtocolError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// StateError reports an operation not allowed in a component's current state.
type StateError struct {
	Component string
	State     string
	Op        string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: cannot %s in state %s", e.Component, e.Op, e.State)
}

// Is matches ErrState.
func (e *StateError) Is(target error) bool { return target == ErrState }

// TimeoutError reports a bounded wait that was exceeded.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.Timeout)
}

// Is matches ErrTimeout.
func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }
