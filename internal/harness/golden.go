package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/mergers/internal/ir"
)

// TraceSnapshot captures the complete outcome of a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Final        FinalState   `json:"final"`
	Error        string       `json:"error,omitempty"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		traceList[i] = map[string]any{
			"type":               event.Type,
			"seq":                event.Seq,
			"id":                 event.ID,
			"kind":               event.Kind,
			"producers":          event.Producers,
			"objects_merged":     event.ObjectsMerged,
			"updates_received":   event.UpdatesReceived,
			"cycles_since_reset": event.CyclesSinceReset,
			"object":             event.Object,
		}
	}

	counters := make(map[string]any)
	for _, smp := range s.Final.Counters.Samples() {
		counters[smp.Name] = smp.Value
	}
	final := map[string]any{
		"state":    s.Final.State,
		"seed":     s.Final.Seed,
		"cached":   s.Final.Cached,
		"counters": counters,
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final":         final,
	}
	if s.Error != "" {
		result["error"] = s.Error
	}
	return result
}

// Snapshot serializes a result as canonical JSON followed by a newline.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Final:        result.Final,
		Error:        result.RunError,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the snapshot against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
