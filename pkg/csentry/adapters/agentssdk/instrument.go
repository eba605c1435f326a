// instrument.go provides Instrument, the entry point for reporting
// ai-agents-sdk runs through a csentry client.

package agentssdk

import (
	"log/slog"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// WrapOption configures a WrappedRunner.
type WrapOption func(*WrappedRunner)

// WithLogger sets the logger used when a capture itself fails.
func WithLogger(logger *slog.Logger) WrapOption {
	return func(w *WrappedRunner) {
		w.logger = logger
	}
}

// WithEnrichmentStore replaces the default in-memory store.
func WithEnrichmentStore(store EnrichmentStore) WrapOption {
	return func(w *WrappedRunner) {
		w.enrichments = store
	}
}

// Instrument wraps runner so that its hooks leave breadcrumbs on reporter
// and its errors and panics are captured.
//
//	client, _ := csentry.New(dsn)
//	wrapped := agentssdk.Instrument(agents.NewRunner(llm), client)
//	result, err := wrapped.Run(ctx, agent, input, session, nil)
func Instrument(runner *agents.Runner, reporter csentry.Reporter, opts ...WrapOption) *WrappedRunner {
	w := &WrappedRunner{
		inner:       runner,
		reporter:    reporter,
		enrichments: NewEnrichmentStore(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.enrichments == nil {
		w.enrichments = NewEnrichmentStore()
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}
