package feed

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorType classifies why a fetch failed. All four are transient from
// the service's point of view: the next scheduled tick (or reconnect)
// retries naturally.
type ErrorType string

const (
	// ErrTypeNetworkUnavailable means connectivity is currently down.
	ErrTypeNetworkUnavailable ErrorType = "network_unavailable"
	// ErrTypeRateLimitExceeded means the source's window quota is spent.
	ErrTypeRateLimitExceeded ErrorType = "rate_limit_exceeded"
	// ErrTypeTimeout means the provider call overran its deadline.
	ErrTypeTimeout ErrorType = "timeout"
	// ErrTypeProvider means the upstream answered with an error or a
	// payload we could not use.
	ErrTypeProvider ErrorType = "provider_error"
)

// Error is the failure shape published on the error event and returned
// to manual callers.
type Error struct {
	Type   ErrorType
	Source string
	Key    string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s %s: %v", e.Type, e.Source, e.Key, e.Cause)
	}
	return fmt.Sprintf("%s: %s %s", e.Type, e.Source, e.Key)
}

func (e *Error) Unwrap() error { return e.Cause }

// MarshalJSON flattens the cause to a string so the error can travel
// over the event stream.
func (e *Error) MarshalJSON() ([]byte, error) {
	var cause string
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return json.Marshal(struct {
		Type   ErrorType `json:"type"`
		Source string    `json:"source"`
		Key    string    `json:"key"`
		Cause  string    `json:"cause,omitempty"`
	}{e.Type, e.Source, e.Key, cause})
}

// IsType reports whether err is (or wraps) a feed Error of type t.
func IsType(err error, t ErrorType) bool {
	var fe *Error
	return errors.As(err, &fe) && fe.Type == t
}

func newError(t ErrorType, source, key string, cause error) *Error {
	return &Error{Type: t, Source: source, Key: key, Cause: cause}
}
