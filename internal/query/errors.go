package query

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidArgument reports a malformed address, port or opcode. It is
	// always detected before any network I/O.
	ErrInvalidArgument = errors.New("query: invalid argument")

	// ErrTransport reports a local socket failure (open, send or receive).
	ErrTransport = errors.New("query: transport error")

	// ErrHostUnavailable reports that no reply arrived before the timeout.
	ErrHostUnavailable = errors.New("query: host unavailable")

	// ErrMalformedResponse reports a reply that is too short or fails to decode.
	ErrMalformedResponse = errors.New("query: malformed response")

	// ErrResolve reports a failed host name lookup.
	ErrResolve = errors.New("query: resolve failed")
)

// HostUnavailableError identifies the target that did not answer in time.
type HostUnavailableError struct {
	Address string
	Port    int
	Timeout time.Duration
}

func (e *HostUnavailableError) Error() string {
	return fmt.Sprintf("query: host %s:%d unavailable: no reply within %s", e.Address, e.Port, e.Timeout)
}

func (e *HostUnavailableError) Unwrap() error {
	return ErrHostUnavailable
}
