// Package store provides SQLite-backed durable storage for published
// merge results.
//
// The store implements an append-only log with:
//   - Publications: one row per published merged object, with its
//     serialized body, content digest and cycle counters
//   - Metric samples: one row per sample of every metrics report
//
// # Critical Patterns
//
// Logical Identity and Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - A run resumes its clock from LastSeq so seq stays increasing
//     across restarts
//
// Deterministic Query Results
//   - Publication queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Idempotent Writes
//   - Publications are keyed by ID; rewriting the same ID is a no-op
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Publication digests come from ir.PublicationDigest.
package store
