// hooks.go implements agents.RunHooks. Each hook leaves a breadcrumb on the
// reporter and records the operation in flight for the run wrapper.

package agentssdk

import (
	"context"
	"log/slog"

	"github.com/strongdm/ai-agents-sdk/pkg/agents"
	llmsdk "github.com/strongdm/ai-llm-sdk/pkg/llm"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// Breadcrumb categories used by HookAdapter.
const (
	CategoryAgent   = "agent"
	CategoryLLM     = "llm"
	CategoryTool    = "tool"
	CategoryHandoff = "handoff"
)

// HookAdapter wraps an inner RunHooks. It never fails a run on its own;
// only the inner hooks' errors are returned.
type HookAdapter struct {
	reporter csentry.Reporter
	store    EnrichmentStore
	inner    agents.RunHooks
	logger   *slog.Logger
}

// NewHookAdapter returns hooks that report to reporter, update store, and
// then delegate to inner (which may be nil).
func NewHookAdapter(reporter csentry.Reporter, store EnrichmentStore, inner agents.RunHooks, logger *slog.Logger) agents.RunHooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &HookAdapter{
		reporter: reporter,
		store:    store,
		inner:    inner,
		logger:   logger,
	}
}

func (h *HookAdapter) OnAgentStart(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent) error {
	name := agentName(agent)
	h.record(ctx, Operation{Category: CategoryAgent, Agent: name})
	h.breadcrumb(CategoryAgent, csentry.TypeDefault, map[string]any{"agent": name}, "agent %s started", name)

	if h.inner != nil {
		return h.inner.OnAgentStart(ctx, runCtx, agent)
	}
	return nil
}

func (h *HookAdapter) OnAgentEnd(ctx context.Context, runCtx *agents.AgentHookContext, agent *agents.Agent, result agents.RunResult) error {
	name := agentName(agent)
	h.breadcrumb(CategoryAgent, csentry.TypeDefault, map[string]any{"agent": name}, "agent %s finished", name)

	if h.inner != nil {
		return h.inner.OnAgentEnd(ctx, runCtx, agent, result)
	}
	return nil
}

func (h *HookAdapter) OnHandoff(ctx context.Context, runCtx *agents.RunContext, from *agents.Agent, to *agents.Agent) error {
	fromName, toName := agentName(from), agentName(to)
	h.record(ctx, Operation{Category: CategoryHandoff, Agent: toName})
	h.breadcrumb(CategoryHandoff, csentry.TypeDefault,
		map[string]any{"from": fromName, "to": toName},
		"handoff %s -> %s", fromName, toName)

	if h.inner != nil {
		return h.inner.OnHandoff(ctx, runCtx, from, to)
	}
	return nil
}

func (h *HookAdapter) OnToolStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, call llmsdk.ToolCall) error {
	name := agentName(agent)
	h.record(ctx, Operation{
		Category:   CategoryTool,
		Agent:      name,
		Tool:       tool.Name,
		ToolCallID: call.ID,
		ID:         call.ID,
	})
	h.breadcrumb(CategoryTool, csentry.TypeDefault, map[string]any{
		"agent":      name,
		"tool":       tool.Name,
		"call_id":    call.ID,
		"input_size": len(call.Arguments),
	}, "tool %s started", tool.Name)

	if h.inner != nil {
		return h.inner.OnToolStart(ctx, runCtx, agent, tool, call)
	}
	return nil
}

func (h *HookAdapter) OnToolEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, tool agents.Tool, output string) error {
	h.breadcrumb(CategoryTool, csentry.TypeDefault, map[string]any{
		"agent":       agentName(agent),
		"tool":        tool.Name,
		"output_size": len(output),
	}, "tool %s finished", tool.Name)

	if h.inner != nil {
		return h.inner.OnToolEnd(ctx, runCtx, agent, tool, output)
	}
	return nil
}

func (h *HookAdapter) OnLLMStart(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, req llmsdk.Request) error {
	name := agentName(agent)
	h.record(ctx, Operation{Category: CategoryLLM, Agent: name, Model: req.Model})
	h.breadcrumb(CategoryLLM, csentry.TypeHTTP, snapshotRequest(name, req), "llm request to %s", req.Model)

	if h.inner != nil {
		return h.inner.OnLLMStart(ctx, runCtx, agent, req)
	}
	return nil
}

func (h *HookAdapter) OnLLMEnd(ctx context.Context, runCtx *agents.RunContext, agent *agents.Agent, resp llmsdk.Response) error {
	h.record(ctx, Operation{ID: resp.ID, Model: resp.Model})
	h.breadcrumb(CategoryLLM, csentry.TypeHTTP, snapshotResponse(agentName(agent), resp),
		"llm response from %s (%s)", resp.Model, resp.FinishReason)

	if h.inner != nil {
		return h.inner.OnLLMEnd(ctx, runCtx, agent, resp)
	}
	return nil
}

func (h *HookAdapter) record(ctx context.Context, op Operation) {
	if h.store == nil {
		return
	}
	if runID, ok := csentry.RunIDFromContext(ctx); ok {
		h.store.Record(runID, op)
	}
}

func (h *HookAdapter) breadcrumb(category string, typ csentry.Options, data any, format string, args ...any) {
	if h.reporter == nil {
		return
	}
	attrs := map[string]any{
		csentry.AttrCategory: category,
		csentry.AttrData:     data,
	}
	if err := h.reporter.AddBreadcrumb(attrs, typ, format, args...); err != nil {
		h.logger.Debug("csentry: breadcrumb dropped", "category", category, "error", err)
	}
}

func agentName(agent *agents.Agent) string {
	if agent == nil {
		return ""
	}
	return agent.Name()
}
