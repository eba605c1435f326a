// context.go provides utilities for propagating a reporter, run IDs and
// cxdb context IDs through Go context.Context.

package csentry

import "context"

// Reporter is the capture surface of a Client. Adapters depend on it so
// they can be tested without a delivery worker.
type Reporter interface {
	CaptureMessage(attrs map[string]any, opts Options, format string, args ...any) error
	AddBreadcrumb(attrs map[string]any, opts Options, format string, args ...any) error
}

var _ Reporter = (*Client)(nil)

// Context key types (unexported to avoid collisions)
type reporterKey struct{}
type runIDKey struct{}
type contextIDKey struct{}

// contextIDSet is used to distinguish "zero value" from "not set"
type contextIDSet struct {
	id uint64
}

// WithReporter returns a context carrying r.
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// ReporterFromContext returns the reporter attached with WithReporter.
func ReporterFromContext(ctx context.Context) (Reporter, bool) {
	r, ok := ctx.Value(reporterKey{}).(Reporter)
	return r, ok && r != nil
}

// WithRunID returns a context with the run ID attached.
// The run ID is used to correlate breadcrumbs with runner-boundary errors.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext extracts the run ID from context.
// Returns empty string and false if not set or if the run ID is empty.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// WithContextID returns a context with the cxdb context ID attached.
func WithContextID(ctx context.Context, contextID uint64) context.Context {
	return context.WithValue(ctx, contextIDKey{}, contextIDSet{id: contextID})
}

// ContextIDFromContext extracts the cxdb context ID from context.
// Returns 0 and false if not set.
func ContextIDFromContext(ctx context.Context) (uint64, bool) {
	set, ok := ctx.Value(contextIDKey{}).(contextIDSet)
	if !ok {
		return 0, false
	}
	return set.id, true
}

// ContextIDProvider is an optional interface that session implementations can
// satisfy to link events to a cxdb conversation.
//
// The ai-agents-sdk CXDBSession already implements this interface via its
// ContextID() method.
type ContextIDProvider interface {
	ContextID(ctx context.Context) (uint64, error)
}

// ExtraFromContext returns the run_id and cxdb_context_id values found in
// ctx, suitable for the "extra" section. It returns nil when neither is set.
func ExtraFromContext(ctx context.Context) map[string]any {
	extra := make(map[string]any)
	if runID, ok := RunIDFromContext(ctx); ok {
		extra["run_id"] = runID
	}
	if contextID, ok := ContextIDFromContext(ctx); ok {
		extra["cxdb_context_id"] = contextID
	}
	if len(extra) == 0 {
		return nil
	}
	return extra
}
