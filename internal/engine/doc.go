// Package engine dispatches producer payloads and lifecycle events to a
// merger.
//
// ARCHITECTURE:
//
// Single-Writer Event Loop:
// Every call into the merger happens in the Run goroutine, so the merger
// needs no locks. Payload feeders and the publication ticker only enqueue.
//
// Event Processing Flow:
// 1. Events enqueued to the FIFO queue (data, start, timer, end of stream)
// 2. Engine.Run() dequeues events one at a time
// 3. Consecutive data events are batched into one merger.Input
// 4. A timer event hands the batch over with Timer set, so the merge sees
//    every payload that was queued before the tick
// 5. End of stream flushes the batch, publishes one last time and stops
//
// The ticker does not call the merger directly: it enqueues a timer event,
// which lands behind every payload already waiting.
package engine
