package harness

import (
	"github.com/roach88/mergers/internal/merger"
)

// TraceEvent is one publication observed during a scenario.
type TraceEvent struct {
	Type             string         `json:"type"` // always "publish"
	Seq              int64          `json:"seq"`
	ID               string         `json:"id"`
	Kind             string         `json:"kind"`
	Producers        int            `json:"producers"`
	ObjectsMerged    int64          `json:"objects_merged"`
	UpdatesReceived  int64          `json:"updates_received"`
	CyclesSinceReset int64          `json:"cycles_since_reset"`
	Object           map[string]any `json:"object"`
}

// FinalState is the merger state after the run.
type FinalState struct {
	State    string          `json:"state"`
	Seed     string          `json:"seed"`
	Cached   []string        `json:"cached"`
	Counters merger.Counters `json:"counters"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	Pass bool `json:"pass"`

	// Trace contains every publication in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the merger state once the engine stopped.
	Final FinalState `json:"final"`

	// RunError is the code of the error that stopped the engine, if any.
	RunError string `json:"run_error,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Publications returns the number of publish events.
func (r *Result) Publications() int {
	n := 0
	for _, ev := range r.Trace {
		if ev.Type == "publish" {
			n++
		}
	}
	return n
}
