// Package config loads mergers configuration from YAML, TOML or CUE files.
//
// Whatever the source format, the decoded configuration is validated
// against the embedded CUE schema (schema.cue) before it is converted to a
// merger.Config. CUE files get their defaults from the schema; YAML and
// TOML files get the same defaults applied in Go first.
//
// Example (YAML):
//
//	merger:
//	  sub_spec: 3
//	  detector: TPC
//	  retention: n_cycles
//	  cycles: 5
//	  period: 30s
//	database: mergers.db
//	log:
//	  level: debug
package config
