package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Workflow is one automated pipeline step.
type Workflow interface {
	// ID is the stable short identifier, e.g. "wf03".
	ID() string
	// Name is the human-readable workflow name.
	Name() string
	// Run processes every eligible record and reports what happened.
	Run(ctx context.Context) (Summary, error)
}

// Summary reports the outcome of one workflow run.
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
	Elapsed   time.Duration
	Notes     []string
}

// AddNote appends a free-form observation to the summary.
func (s *Summary) AddNote(format string, args ...any) {
	s.Notes = append(s.Notes, fmt.Sprintf(format, args...))
}

// Total returns the number of records the run touched.
func (s Summary) Total() int {
	return s.Processed + s.Failed + s.Skipped
}

// Registry holds workflows in pipeline order.
type Registry struct {
	ordered []Workflow
	byID    map[string]Workflow
}

// NewRegistry constructs a registry from workflows in execution order.
func NewRegistry(workflows ...Workflow) *Registry {
	r := &Registry{byID: make(map[string]Workflow, len(workflows))}
	for _, wf := range workflows {
		r.ordered = append(r.ordered, wf)
		r.byID[strings.ToLower(wf.ID())] = wf
	}
	return r
}

// Lookup resolves a workflow by identifier (case-insensitive).
func (r *Registry) Lookup(id string) (Workflow, bool) {
	wf, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	return wf, ok
}

// All returns the registered workflows in pipeline order.
func (r *Registry) All() []Workflow {
	cp := make([]Workflow, len(r.ordered))
	copy(cp, r.ordered)
	return cp
}
