// events.go builds the capture attributes for runner errors and panics.

package agentssdk

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/strongdm/csentry-go/pkg/csentry"
)

// LoggerName is the "logger" value of events captured by this package.
const LoggerName = "agentssdk"

// guardrailPatterns mark an error message as a policy refusal.
var guardrailPatterns = []string{
	"guardrail",
	"content policy",
	"safety filter",
	"blocked by policy",
}

// runInfo identifies the run an event belongs to.
type runInfo struct {
	runID     string
	contextID uint64
	enriched  Enrichment
}

// errorAttrs returns CaptureMessage attributes for a failed run. Every tag
// and extra key is always written so values from an earlier run never
// linger in the client's sticky context.
func errorAttrs(info runInfo, errorType string) map[string]any {
	var contextID any
	if info.contextID != 0 {
		contextID = info.contextID
	}
	e := info.enriched
	return map[string]any{
		csentry.AttrLogger: LoggerName,
		csentry.AttrContext: map[string]any{
			"tags": map[string]any{
				"error_type": errorType,
				"operation":  e.Operation,
				"agent":      e.AgentName,
				"tool":       e.ToolName,
				"model":      e.Model,
			},
			"extra": map[string]any{
				"run_id":          info.runID,
				"cxdb_context_id": contextID,
				"operation_id":    e.OperationID,
				"tool_call_id":    e.ToolCallID,
				"agent_turns":     e.AgentTurns,
				"llm_calls":       e.LLMCalls,
				"tool_calls":      e.ToolCalls,
				"handoffs":        e.Handoffs,
			},
		},
		csentry.AttrFingerprint: []string{LoggerName, errorType, e.Operation, e.AgentName, e.ToolName},
	}
}

func captureError(r csentry.Reporter, info runInfo, err error) error {
	errorType := classifyError(err)
	return r.CaptureMessage(errorAttrs(info, errorType), csentry.LevelError, "%s", err.Error())
}

func capturePanic(r csentry.Reporter, info runInfo, recovered any) error {
	attrs := errorAttrs(info, "panic")
	attrs[csentry.AttrStackTrace] = string(debug.Stack())
	return r.CaptureMessage(attrs, csentry.LevelFatal, "panic: %s", formatRecovered(recovered))
}

// classifyError names the kind of failure for tagging and grouping.
func classifyError(err error) string {
	switch {
	case err == nil:
		return "error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	for _, p := range guardrailPatterns {
		if strings.Contains(msg, p) {
			return "guardrail"
		}
	}
	return "error"
}

func formatRecovered(recovered any) string {
	if recovered == nil {
		return "<nil>"
	}
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%v", recovered)
}
