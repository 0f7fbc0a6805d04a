package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mergers/internal/merger"
)

// Scenario defines one merge run and the expectations on its outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Retention is the retention mode; empty means full_history.
	Retention string `yaml:"retention,omitempty"`

	// Cycles is the n_cycles threshold.
	Cycles int `yaml:"cycles,omitempty"`

	// SubSpec keys the published object.
	SubSpec uint32 `yaml:"sub_spec,omitempty"`

	// Steps are fed to the engine in order.
	Steps []Step `yaml:"steps"`

	// ExpectError is the RuntimeError code the run must stop with.
	ExpectError string `yaml:"expect_error,omitempty"`

	// Assertions validate the trace and the final merger state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one engine event. Exactly one field is set.
type Step struct {
	Start       bool         `yaml:"start,omitempty"`
	Payload     *PayloadStep `yaml:"payload,omitempty"`
	Tick        bool         `yaml:"tick,omitempty"`
	EndOfStream bool         `yaml:"end_of_stream,omitempty"`
}

// PayloadStep describes one producer payload. Exactly one object field is set.
type PayloadStep struct {
	Origin      string `yaml:"origin"`
	Description string `yaml:"description"`
	SubSpec     uint32 `yaml:"sub_spec,omitempty"`

	Counter    *int64   `yaml:"counter,omitempty"`
	Histogram  []int64  `yaml:"histogram,omitempty"`
	Tally      []string `yaml:"tally,omitempty"`
	Collection []int64  `yaml:"collection,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "publication_count": exactly Count publications
	// - "published_counter": publication number Publication (1-based) is a
	//   counter holding Value
	// - "final_counter": merger counter Counter equals Value at the end
	// - "final_state": merger state equals State at the end
	Type string `yaml:"type"`

	Count       int    `yaml:"count,omitempty"`
	Publication int    `yaml:"publication,omitempty"`
	Value       int64  `yaml:"value,omitempty"`
	Counter     string `yaml:"counter,omitempty"`
	State       string `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertPublicationCount = "publication_count"
	AssertPublishedCounter = "published_counter"
	AssertFinalCounter     = "final_counter"
	AssertFinalState       = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// retention converts the scenario's retention fields.
func (s *Scenario) retention() (merger.Retention, error) {
	mode, err := merger.ParseRetentionMode(s.Retention)
	if err != nil {
		return merger.Retention{}, err
	}
	r := merger.Retention{Mode: mode}
	if mode == merger.NCycles {
		r.Cycles = s.Cycles
	}
	return r, r.Validate()
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 && s.ExpectError == "" {
		return fmt.Errorf("assertions or expect_error is required")
	}
	if _, err := s.retention(); err != nil {
		return err
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
		if step.EndOfStream && i != len(s.Steps)-1 {
			return fmt.Errorf("steps[%d]: end_of_stream must be the last step", i)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, step Step) error {
	set := 0
	for _, b := range []bool{step.Start, step.Payload != nil, step.Tick, step.EndOfStream} {
		if b {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("steps[%d]: exactly one of start, payload, tick, end_of_stream is required", index)
	}
	if step.Payload == nil {
		return nil
	}

	p := step.Payload
	if p.Origin == "" || p.Description == "" {
		return fmt.Errorf("steps[%d].payload: origin and description are required", index)
	}
	objects := 0
	if p.Counter != nil {
		objects++
	}
	for _, n := range []int{len(p.Histogram), len(p.Tally), len(p.Collection)} {
		if n > 0 {
			objects++
		}
	}
	if objects != 1 {
		return fmt.Errorf("steps[%d].payload: exactly one of counter, histogram, tally, collection is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertPublicationCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertPublishedCounter:
		if a.Publication < 1 {
			return fmt.Errorf("assertions[%d]: publication must be >= 1", index)
		}
	case AssertFinalCounter:
		if a.Counter == "" {
			return fmt.Errorf("assertions[%d]: counter is required for final_counter", index)
		}
	case AssertFinalState:
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
