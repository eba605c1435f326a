// errors.go defines the sentinel errors returned by the client.

package csentry

import "errors"

var (
	// ErrInvalidSampleRate is returned by New when the sample rate is
	// outside [0, 1].
	ErrInvalidSampleRate = errors.New("csentry: sample rate must be within [0, 1]")

	// ErrInvalidDSN is returned when a connection string cannot be parsed.
	ErrInvalidDSN = errors.New("csentry: invalid DSN")

	// ErrInvalidContext is returned when a context document is not a JSON
	// object (or null).
	ErrInvalidContext = errors.New("csentry: context must be a JSON object")

	// ErrClosed is returned by every Client method after Close.
	ErrClosed = errors.New("csentry: client closed")
)
