// Package merger implements the periodic merge cycle.
//
// A Merger receives partial objects from many producers and, on every
// publication tick, folds them into one object that is handed to a
// Publisher.
//
// ARCHITECTURE:
//
// Seed and cache:
// The first producer seen after a reset becomes the seed. Its payload is kept
// as raw bytes (SeedBuffer) and decoded afresh at every cycle, so the merge
// accumulator never aliases a previous cycle and object types never need a
// clone method. Every other producer's latest payload is kept decoded in the
// Cache, overwritten (not merged) on each arrival.
//
// Merge cycle:
//  1. Materialize the seed into the accumulator
//  2. Fold every cache entry into it, in sorted producer order
//  3. Publish the accumulator, report counters
//  4. Apply the retention policy (full history, last difference, N cycles)
//
// Single-writer:
// A Merger is not safe for concurrent use. All calls are expected from one
// goroutine, typically the engine's event loop. No locks are taken.
package merger
