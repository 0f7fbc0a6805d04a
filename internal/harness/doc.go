// Package harness runs merge scenarios against the real merger and engine.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	retention: n_cycles        # full_history (default) | last_difference | n_cycles
//	cycles: 2                  # n_cycles only
//	steps:
//	  - start: true
//	  - payload: { origin: A, description: CNT, counter: 3 }
//	  - payload: { origin: B, description: CNT, counter: 4 }
//	  - tick: true
//	  - end_of_stream: true
//	expect_error: KIND_MISMATCH # optional
//	assertions:
//	  - type: publication_count
//	    count: 2
//	  - type: published_counter
//	    publication: 1
//	    value: 7
//	  - type: final_counter
//	    counter: total_objects_merged
//	    value: 4
//	  - type: final_state
//	    state: idle
//
// A payload step carries exactly one of counter, histogram (values to fill
// a 10-bin [0,100) histogram), tally (labels) or collection (counter values).
//
// # Determinism
//
// Publication IDs come from a sequence generator ("pub-1", "pub-2", ...)
// and seq numbers from a fresh logical clock, so the same scenario always
// produces the same trace. RunWithGolden compares that trace, serialized as
// canonical JSON, against testdata/golden/<name>.golden.
//
// # Execution
//
// Steps are enqueued on an engine.Engine in order and the engine runs to
// completion, so payloads queued before a tick are merged by that tick
// exactly as in production. A scenario without an end_of_stream step is
// stopped once its queue is drained.
package harness
