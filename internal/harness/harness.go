package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/mergers/internal/engine"
	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/merger"
	"github.com/roach88/mergers/internal/object"
)

// Run executes a scenario and returns the result.
//
// Each scenario gets a fresh merger, a fresh engine and deterministic IDs.
// Execution errors from the merger are part of the result (RunError), not
// of the returned error, which is reserved for scenarios that cannot be run.
//
// Execution flow:
// 1. Build the merger from the scenario retention
// 2. Enqueue every step on an engine
// 3. Run the engine until end of stream, a fatal error or an empty queue
// 4. Record the final state and evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	retention, err := scenario.retention()
	if err != nil {
		return nil, err
	}
	cfg := merger.DefaultConfig()
	cfg.SubSpec = scenario.SubSpec
	cfg.Retention = retention

	result := NewResult()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in scenarios

	m, err := merger.New(cfg,
		merger.PublisherFunc(func(_ context.Context, pub merger.Publication) error {
			result.Trace = append(result.Trace, traceEvent(pub))
			return nil
		}),
		merger.WithIDGenerator(merger.NewSequenceGenerator("pub")),
		merger.WithReporter(merger.ReporterFunc(func(context.Context, []merger.Sample) error { return nil })),
		merger.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create merger: %w", err)
	}
	eng := engine.New(m, engine.WithLogger(logger))

	ended := false
	for i, step := range scenario.Steps {
		ev, err := toEvent(step)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		eng.Enqueue(ev)
		ended = ended || step.EndOfStream
	}
	if !ended {
		eng.Stop()
	}

	if runErr := eng.Run(context.Background()); runErr != nil {
		result.RunError = errorCode(runErr)
	}
	result.Final = finalState(m)

	switch {
	case scenario.ExpectError != result.RunError && scenario.ExpectError == "":
		result.AddError(fmt.Sprintf("unexpected error %s", result.RunError))
	case scenario.ExpectError != result.RunError:
		result.AddError(fmt.Sprintf("expected error %s, got %q", scenario.ExpectError, result.RunError))
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func toEvent(step Step) (engine.Event, error) {
	switch {
	case step.Start:
		return engine.Event{Type: engine.EventTypeStart}, nil
	case step.Tick:
		return engine.Event{Type: engine.EventTypeTimer}, nil
	case step.EndOfStream:
		return engine.Event{Type: engine.EventTypeEndOfStream}, nil
	case step.Payload != nil:
		ref, err := toRef(*step.Payload)
		if err != nil {
			return engine.Event{}, err
		}
		return engine.DataEvent(ref), nil
	default:
		return engine.Event{}, errors.New("empty step")
	}
}

// histogram payloads use a fixed binning so they always merge
const (
	histogramBins = 10
	histogramLow  = 0
	histogramHigh = 100
)

func toRef(p PayloadStep) (ir.DataRef, error) {
	var rep object.Representation
	switch {
	case p.Counter != nil:
		rep = object.Single{Object: object.NewCounter(p.Description, *p.Counter)}
	case len(p.Histogram) > 0:
		h := object.NewHistogram(p.Description, histogramBins, histogramLow, histogramHigh)
		for _, v := range p.Histogram {
			h.Fill(v)
		}
		rep = object.Single{Object: h}
	case len(p.Tally) > 0:
		t := object.NewTally(p.Description)
		for _, label := range p.Tally {
			t.Add(label, 1)
		}
		rep = object.Custom{Object: t}
	case len(p.Collection) > 0:
		objs := make([]object.Object, len(p.Collection))
		for i, v := range p.Collection {
			objs[i] = object.NewCounter(fmt.Sprintf("%s_%d", p.Description, i), v)
		}
		rep = object.Collection{Objects: objs}
	default:
		return ir.DataRef{}, errors.New("payload without object")
	}
	return object.Frame(p.Origin, p.Description, p.SubSpec, rep)
}

func traceEvent(pub merger.Publication) TraceEvent {
	return TraceEvent{
		Type:             "publish",
		Seq:              pub.Seq,
		ID:               pub.ID,
		Kind:             pub.Object.Kind().String(),
		Producers:        pub.Producers,
		ObjectsMerged:    pub.ObjectsMerged,
		UpdatesReceived:  pub.UpdatesReceived,
		CyclesSinceReset: pub.CyclesSinceReset,
		Object:           summarize(pub.Object),
	}
}

// summarize renders a representation as plain values for the trace.
func summarize(rep object.Representation) map[string]any {
	switch r := rep.(type) {
	case object.Single:
		return summarizeObject(r.Object)
	case object.Custom:
		return summarizeObject(r.Object)
	case object.Collection:
		items := make([]any, len(r.Objects))
		for i, o := range r.Objects {
			items[i] = summarizeObject(o)
		}
		return map[string]any{"collection": items}
	default:
		return map[string]any{}
	}
}

func summarizeObject(o object.Object) map[string]any {
	switch v := o.(type) {
	case *object.Counter:
		return map[string]any{"counter": v.Value}
	case *object.Histogram:
		bins := make([]any, len(v.Bins))
		for i, b := range v.Bins {
			bins[i] = b
		}
		return map[string]any{"bins": bins, "entries": v.Entries}
	case *object.Tally:
		counts := make(map[string]any, len(v.Counts))
		for label, n := range v.Counts {
			counts[label] = n
		}
		return map[string]any{"tally": counts}
	default:
		return map[string]any{"type": o.TypeName()}
	}
}

func finalState(m *merger.Merger) FinalState {
	cached := []string{}
	for _, s := range m.CachedSources() {
		cached = append(cached, string(s))
	}
	return FinalState{
		State:    m.State().String(),
		Seed:     string(m.SeedSource()),
		Cached:   cached,
		Counters: m.Counters(),
	}
}

func errorCode(err error) string {
	var re *merger.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return "ERROR"
}
