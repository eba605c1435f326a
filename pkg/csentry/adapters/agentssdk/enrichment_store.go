// enrichment_store.go tracks, per run, the operation in flight and how many
// operations of each kind the hooks saw, for tagging runner-boundary errors.

package agentssdk

import "sync"

// Operation is one observation made by a hook. A non-empty Category starts a
// new operation; an empty Category refines the current one (an LLM response
// reporting its id and the model that actually answered).
type Operation struct {
	Category   string
	Agent      string
	Model      string
	Tool       string
	ToolCallID string
	ID         string
}

// Enrichment is what the hooks recorded for a run so far.
type Enrichment struct {
	AgentName string
	Model     string

	ToolName   string
	ToolCallID string

	// Operation is the category of the latest operation.
	Operation   string
	OperationID string

	AgentTurns int
	LLMCalls   int
	ToolCalls  int
	Handoffs   int
}

// apply folds op into e.
func (e *Enrichment) apply(op Operation) {
	if op.Agent != "" {
		e.AgentName = op.Agent
	}
	if op.Model != "" {
		e.Model = op.Model
	}
	if op.Category == "" {
		if op.ID != "" {
			e.OperationID = op.ID
		}
		return
	}

	e.Operation = op.Category
	e.OperationID = op.ID
	switch op.Category {
	case CategoryAgent:
		e.AgentTurns++
	case CategoryLLM:
		e.LLMCalls++
	case CategoryTool:
		e.ToolCalls++
		e.ToolName = op.Tool
		e.ToolCallID = op.ToolCallID
	case CategoryHandoff:
		e.Handoffs++
	}
}

// EnrichmentStore holds per-run Enrichment. Implementations must be safe
// for concurrent use.
type EnrichmentStore interface {
	// Record folds op into the enrichment for runID, creating it if needed.
	Record(runID string, op Operation)

	// Snapshot returns a copy of the enrichment for runID.
	Snapshot(runID string) (Enrichment, bool)

	// Forget drops runID once its run has been reported.
	Forget(runID string)
}

type memoryStore struct {
	mu   sync.Mutex
	runs map[string]*Enrichment
}

// NewEnrichmentStore returns an in-memory EnrichmentStore.
func NewEnrichmentStore() EnrichmentStore {
	return &memoryStore{runs: make(map[string]*Enrichment)}
}

func (s *memoryStore) Record(runID string, op Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.runs[runID]
	if e == nil {
		e = &Enrichment{}
		s.runs[runID] = e
	}
	e.apply(op)
}

func (s *memoryStore) Snapshot(runID string) (Enrichment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.runs[runID]; e != nil {
		return *e, true
	}
	return Enrichment{}, false
}

func (s *memoryStore) Forget(runID string) {
	s.mu.Lock()
	delete(s.runs, runID)
	s.mu.Unlock()
}
