package client

import (
	"errors"
	"fmt"
)

// Default messages used when a failed chat has no server-provided detail.
const (
	msgRequestTimeout = "Request timeout"
	msgUnknownError   = "Unknown error"
)

// ErrorKind classifies transport failures.
type ErrorKind string

const (
	ErrKindTimeout    ErrorKind = "timeout"
	ErrKindConnection ErrorKind = "connection"
)

// InvalidInputError reports a request rejected by local validation.
// No network activity has happened when it is returned.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// TransportError reports a failed HTTP exchange: the server could not be
// reached, or a complete response did not arrive within the timeout.
type TransportError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Kind == ErrKindTimeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: connection failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the exchange failed by deadline expiry.
func (e *TransportError) Timeout() bool { return e.Kind == ErrKindTimeout }

// ProtocolError reports a server response that does not match the wrapper
// API contract. It is always surfaced as an error, never folded into a
// ChatResult, so callers cannot mistake a broken contract for a business
// failure.
type ProtocolError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: protocol error: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: protocol error: %s", e.Op, e.Detail)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == ErrKindTimeout
}

// IsConnectionFailure reports whether err is a transport connection failure.
func IsConnectionFailure(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == ErrKindConnection
}

// IsInvalidInput reports whether err is a local validation failure.
func IsInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

// IsProtocolError reports whether err is a wrapper API contract violation.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
