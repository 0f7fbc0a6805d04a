package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s seq=%d merged=%d %v\n", i+1, event.ID, event.Seq, event.ObjectsMerged, event.Object)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertPublicationCount:
		return assertPublicationCount(result, a)
	case AssertPublishedCounter:
		return assertPublishedCounter(result, a)
	case AssertFinalCounter:
		return assertFinalCounter(result, a)
	case AssertFinalState:
		return assertFinalState(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertPublicationCount(result *Result, a Assertion) error {
	if n := result.Publications(); n != a.Count {
		return &AssertionError{
			Type:     AssertPublicationCount,
			Expected: fmt.Sprintf("%d publications", a.Count),
			Actual:   fmt.Sprintf("%d publications", n),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertPublishedCounter(result *Result, a Assertion) error {
	if a.Publication > len(result.Trace) {
		return &AssertionError{
			Type:     AssertPublishedCounter,
			Expected: fmt.Sprintf("publication %d", a.Publication),
			Actual:   fmt.Sprintf("only %d publications", len(result.Trace)),
			Trace:    result.Trace,
		}
	}
	ev := result.Trace[a.Publication-1]
	got, ok := ev.Object["counter"].(int64)
	if !ok || got != a.Value {
		return &AssertionError{
			Type:     AssertPublishedCounter,
			Expected: fmt.Sprintf("publication %d holds counter %d", a.Publication, a.Value),
			Actual:   fmt.Sprintf("%v", ev.Object),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertFinalCounter(result *Result, a Assertion) error {
	for _, s := range result.Final.Counters.Samples() {
		if s.Name != a.Counter {
			continue
		}
		if s.Value != a.Value {
			return &AssertionError{
				Type:     AssertFinalCounter,
				Expected: fmt.Sprintf("%s = %d", a.Counter, a.Value),
				Actual:   fmt.Sprintf("%s = %d", a.Counter, s.Value),
				Trace:    result.Trace,
			}
		}
		return nil
	}
	return fmt.Errorf("unknown counter %q", a.Counter)
}

func assertFinalState(result *Result, a Assertion) error {
	if result.Final.State != a.State {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state %s", a.State),
			Actual:   fmt.Sprintf("state %s", result.Final.State),
			Trace:    result.Trace,
		}
	}
	return nil
}
