package mormotauth

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when signing or dispatching a request
	// is attempted before a successful Login. This is a caller bug, not a
	// recoverable protocol outcome.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrBuilderUsed is returned by Build when the Builder was already consumed.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrSessionCacheDisabled is returned by Resume when no session cache was configured.
	ErrSessionCacheDisabled = errors.New("session cache disabled")
)

// NetworkError reports a transport-level failure reaching the remote
// service: connection refused, timeout, DNS failure. It always propagates
// to the caller and is never folded into an authentication rejection.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ProtocolError reports a response that arrived but did not carry the
// expected shape: unparsable JSON, a missing "result" field, or an
// unusable session key.
type ProtocolError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s: %s", e.Endpoint, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
