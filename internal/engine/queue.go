package engine

import (
	"fmt"
	"sync"

	"github.com/roach88/mergers/internal/ir"
)

// EventType distinguishes between event kinds.
type EventType int

const (
	// EventTypeData carries one producer payload.
	EventTypeData EventType = iota + 1
	// EventTypeStart begins a new run and discards all merger state.
	EventTypeStart
	// EventTypeTimer asks for a merge cycle.
	EventTypeTimer
	// EventTypeEndOfStream requests a final publication and stops the loop.
	EventTypeEndOfStream
)

func (t EventType) String() string {
	switch t {
	case EventTypeData:
		return "data"
	case EventTypeStart:
		return "start"
	case EventTypeTimer:
		return "timer"
	case EventTypeEndOfStream:
		return "end_of_stream"
	default:
		return fmt.Sprintf("event(%d)", int(t))
	}
}

// Event is one entry of the dispatch queue.
type Event struct {
	Type EventType
	// Ref is set for EventTypeData only.
	Ref ir.DataRef
}

// DataEvent wraps a payload.
func DataEvent(ref ir.DataRef) Event {
	return Event{Type: EventTypeData, Ref: ref}
}

// eventQueue is a thread-safe FIFO queue for events.
//
// The queue is unbounded so producers never block on a slow merge cycle.
//
// Thread-safety is provided for external enqueuing (payload feeders, the
// ticker) while the Engine's Run loop dequeues.
//
// The queue uses a channel for signaling to enable context-aware waiting
// in the Run loop (prevents goroutine hangs on context cancellation).
type eventQueue struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]Event, 0, 64),
		signal: make(chan struct{}, 1),
	}
}

// Enqueue adds an event to the back of the queue.
// Thread-safe: may be called from any goroutine.
// Returns false if the queue is closed.
func (q *eventQueue) Enqueue(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.events = append(q.events, e)

	// Signal availability (non-blocking - buffer of 1 coalesces multiple signals)
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue attempts to dequeue without blocking.
// Returns (Event{}, false) if queue is empty.
func (q *eventQueue) TryDequeue() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return Event{}, false
	}

	e := q.events[0]

	// Nil out the slot so the payload slices can be collected.
	q.events[0] = Event{}

	// Fix memory retention: reset slice when empty
	if len(q.events) == 1 {
		// Last element - reset to empty slice with original capacity
		q.events = q.events[:0]
	} else {
		q.events = q.events[1:]
	}

	return e, true
}

// Wait returns a channel that signals when events may be available.
// Use with select for context-aware waiting:
//
//	select {
//	case <-ctx.Done():
//	    return ctx.Err()
//	case <-q.Wait():
//	    // Try TryDequeue
//	}
func (q *eventQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Closed reports whether Close has been called. Events already queued
// may still be waiting to be dequeued.
func (q *eventQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Close signals that no more events will be enqueued.
// Wakes any blocked waiters by closing the signal channel.
func (q *eventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return // Already closed
	}

	q.closed = true
	close(q.signal) // Wakes all waiters
}
