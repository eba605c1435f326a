// wrapper.go implements WrappedRunner, which reports agents.Runner errors
// and panics. Hooks only supply breadcrumbs and enrichment.

package agentssdk

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/strongdm/ai-agents-sdk/pkg/agents"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// WrappedRunner wraps an agents.Runner and reports what goes wrong.
type WrappedRunner struct {
	inner       *agents.Runner
	reporter    csentry.Reporter
	enrichments EnrichmentStore
	logger      *slog.Logger
}

// Run executes agent with session, reporting a returned error at error
// level and a panic at fatal level before re-panicking.
func (w *WrappedRunner) Run(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (agents.RunResult, error) {
	ctx, info := w.begin(ctx, session)
	defer w.enrichments.Forget(info.runID)
	defer w.recoverPanic(info)

	result, err := w.inner.Run(ctx, agent, input, session, w.wrapRunConfig(cfg))
	if err != nil {
		w.report(info, err)
	}
	return result, err
}

// RunOnce executes a single turn without a session.
func (w *WrappedRunner) RunOnce(ctx context.Context, agent *agents.Agent, input string, cfg *agents.RunConfig) (agents.RunResult, error) {
	ctx, info := w.begin(ctx, nil)
	defer w.enrichments.Forget(info.runID)
	defer w.recoverPanic(info)

	result, err := w.inner.RunOnce(ctx, agent, input, w.wrapRunConfig(cfg))
	if err != nil {
		w.report(info, err)
	}
	return result, err
}

// RunStream starts a streaming run. Only errors returned while starting the
// stream are reported. The run's enrichment is left in the store on success
// because the stream's hooks keep writing to it.
func (w *WrappedRunner) RunStream(ctx context.Context, agent *agents.Agent, input string, session agents.Session, cfg *agents.RunConfig) (*agents.StreamingRun, error) {
	ctx, info := w.begin(ctx, session)
	defer w.recoverPanic(info)

	stream, err := w.inner.RunStream(ctx, agent, input, session, w.wrapRunConfig(cfg))
	if err != nil {
		w.report(info, err)
		w.enrichments.Forget(info.runID)
	}
	return stream, err
}

// Inner returns the wrapped Runner.
func (w *WrappedRunner) Inner() *agents.Runner {
	return w.inner
}

func (w *WrappedRunner) begin(ctx context.Context, session any) (context.Context, runInfo) {
	info := runInfo{runID: uuid.NewString()}
	ctx = csentry.WithRunID(ctx, info.runID)
	ctx = csentry.WithReporter(ctx, w.reporter)
	info.contextID = contextIDFor(ctx, session)
	return ctx, info
}

// contextIDFor prefers the session's cxdb context and falls back to one
// attached to ctx.
func contextIDFor(ctx context.Context, session any) uint64 {
	if provider, ok := session.(csentry.ContextIDProvider); ok {
		if id, err := provider.ContextID(ctx); err == nil {
			return id
		}
	}
	if id, ok := csentry.ContextIDFromContext(ctx); ok {
		return id
	}
	return 0
}

func (w *WrappedRunner) wrapRunConfig(cfg *agents.RunConfig) *agents.RunConfig {
	var cloned agents.RunConfig
	if cfg != nil {
		cloned = *cfg
	}
	cloned.Hooks = NewHookAdapter(w.reporter, w.enrichments, cloned.Hooks, w.logger)
	return &cloned
}

func (w *WrappedRunner) report(info runInfo, err error) {
	if w.reporter == nil {
		return
	}
	info.enriched, _ = w.enrichments.Snapshot(info.runID)
	if rerr := captureError(w.reporter, info, err); rerr != nil {
		w.logger.Warn("csentry: failed to capture run error", "run_id", info.runID, "error", rerr)
	}
}

func (w *WrappedRunner) recoverPanic(info runInfo) {
	r := recover()
	if r == nil {
		return
	}
	if w.reporter == nil {
		panic(r)
	}
	info.enriched, _ = w.enrichments.Snapshot(info.runID)
	if rerr := capturePanic(w.reporter, info, r); rerr != nil {
		w.logger.Warn("csentry: failed to capture panic", "run_id", info.runID, "error", rerr)
	}
	panic(r)
}
