// Package csentry is a small client for reporting messages and breadcrumbs to
// a Sentry-compatible store endpoint.
//
// A Client owns a JSON context document (user, tags, extra, breadcrumbs and a
// few fixed platform sections) and a single background worker that delivers
// that document whenever a message is captured. Callers never block on
// network I/O: CaptureMessage mutates the document under the client lock,
// marks it pending and wakes the worker.
//
// # Core Components
//
//   - DSN: parsed connection string and the computed store URL
//   - Client: the context document, the capture API and the delivery worker
//   - Transport: destination for serialized events (HTTP by default; stderr,
//     multi, noop and cxdb live under transports/)
//   - Scrubber: optional redaction of secrets in messages, tags and extra
//
// # Quick Start
//
//	client, err := csentry.New(os.Getenv("SENTRY_DSN"),
//	    csentry.WithDefaultScrubbing(),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.AddBreadcrumb(nil, csentry.LevelInfo, "loaded %d rows", n)
//	client.CaptureMessage(nil, csentry.LevelWarning, "disk at %d%%", pct)
//
// # Delivery
//
// At most one POST is in flight per client. Captures that arrive while a
// send is running overwrite the document and are coalesced into the next
// send; there is no queue, no retry and no persistence. Breadcrumbs are
// dropped after every delivery attempt, successful or not.
package csentry
