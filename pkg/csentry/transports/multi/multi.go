// Package multi provides a transport that fans out to multiple transports.
// The first transport is the primary and decides the reply; the others are
// mirrors that receive every event but never stand in for the primary.
package multi

import (
	"context"
	"errors"
	"log/slog"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// MultiTransportOption configures a multi transport.
type MultiTransportOption func(*multiTransport)

// WithLogger sets the logger for mirror failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) MultiTransportOption {
	return func(t *multiTransport) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// multiTransport fans out to a primary transport and its mirrors.
type multiTransport struct {
	primary csentry.Transport
	mirrors []csentry.Transport
	logger  *slog.Logger
}

// NewMultiTransport creates a transport that posts to every given transport
// in order. See NewMultiTransportWithOptions.
func NewMultiTransport(transports ...csentry.Transport) csentry.Transport {
	return NewMultiTransportWithOptions(transports)
}

// NewMultiTransportWithOptions creates a transport that posts to every given
// transport in order.
//
// Post returns the reply and error of transports[0] only; a mirror's
// acknowledgement never replaces a failed or rejected primary. Mirrors are
// posted even when the primary fails, and their failures are logged at Warn.
func NewMultiTransportWithOptions(transports []csentry.Transport, opts ...MultiTransportOption) csentry.Transport {
	t := &multiTransport{logger: slog.Default()}
	if len(transports) > 0 {
		t.primary = transports[0]
		t.mirrors = transports[1:]
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *multiTransport) Post(ctx context.Context, req csentry.Request) (csentry.Reply, error) {
	if t.primary == nil {
		return csentry.Reply{}, nil
	}

	reply, err := t.primary.Post(ctx, req)

	for i, mirror := range t.mirrors {
		mreply, merr := mirror.Post(ctx, req)
		switch {
		case merr != nil:
			t.logger.Warn("csentry: mirror delivery failed",
				"mirror", i+1,
				"event_id", req.EventID(),
				"error", merr)
		case mreply.StatusCode < 200 || mreply.StatusCode > 299:
			t.logger.Warn("csentry: mirror delivery rejected",
				"mirror", i+1,
				"event_id", req.EventID(),
				"status", mreply.StatusCode)
		}
	}

	return reply, err
}

// Close calls Close on all transports, collecting any errors.
func (t *multiTransport) Close() error {
	var errs []error
	if t.primary != nil {
		if err := t.primary.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, mirror := range t.mirrors {
		if err := mirror.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
