// Package noop provides a transport that discards all events.
// Useful for testing and for disabling delivery.
package noop

import (
	"context"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// noopTransport discards all events.
type noopTransport struct{}

// NewNoopTransport creates a transport that discards all events and
// acknowledges each one as a store endpoint would.
func NewNoopTransport() csentry.Transport {
	return &noopTransport{}
}

// Post discards the event.
func (t *noopTransport) Post(ctx context.Context, req csentry.Request) (csentry.Reply, error) {
	return csentry.AcceptedReply(req), nil
}

// Close is a no-op and returns nil.
func (t *noopTransport) Close() error {
	return nil
}
