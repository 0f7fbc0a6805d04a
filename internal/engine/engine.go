package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/merger"
)

// Processor is the state machine driven by the engine. *merger.Merger
// implements it.
type Processor interface {
	Start()
	Process(ctx context.Context, in merger.Input) error
	EndOfStream(ctx context.Context) error
}

// Engine is the single-writer dispatch loop in front of a Processor.
//
// CRITICAL: All Processor calls happen in the Run goroutine.
// External callers use Enqueue() to submit payloads and lifecycle events.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//
// INVARIANTS:
//   - Events are handled in FIFO order
//   - Data events dequeued before a timer event are processed before the
//     merge triggered by that timer
type Engine struct {
	proc   Processor
	queue  *eventQueue
	period time.Duration
	log    *slog.Logger

	pending []ir.DataRef
	stats   Stats
}

// Stats counts handled events. Read it after Run returns.
type Stats struct {
	Payloads int64
	Ticks    int64
	Batches  int64
	Errors   int64
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithPeriod makes Run enqueue a timer event every d. Without it, timer
// events must be enqueued by the caller.
func WithPeriod(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.period = d
	}
}

// WithLogger sets the logger used for loop events.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an Engine driving p.
func New(p Processor, opts ...EngineOption) *Engine {
	e := &Engine{
		proc:  p,
		queue: newEventQueue(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue submits an event for processing by the Run loop.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the engine has been stopped.
func (e *Engine) Enqueue(ev Event) bool {
	return e.queue.Enqueue(ev)
}

// Stop closes the queue. Run processes what is already queued, then returns.
func (e *Engine) Stop() {
	e.queue.Close()
}

// Stats returns the event counters.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Run starts the single-writer event loop.
// Blocks until end of stream, Stop(), context cancellation or a fatal
// processing error.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: a payload that fails to decode is logged and skipped.
// Every other processing error (invariant violations, kind mismatches,
// publisher failures) is logged and returned, stopping the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("engine starting", "period", e.period)

	var tick <-chan time.Time
	if e.period > 0 {
		ticker := time.NewTicker(e.period)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		event, ok := e.queue.TryDequeue()
		if ok {
			done, err := e.processEvent(ctx, event)
			if err != nil {
				e.queue.Close()
				return err
			}
			if done {
				e.queue.Close()
				e.log.Info("engine stopping: end of stream")
				return nil
			}
			continue
		}

		// queue drained: hand the batch over before sleeping
		if err := e.flush(ctx, false); err != nil {
			e.queue.Close()
			return err
		}

		select {
		case <-ctx.Done():
			e.log.Info("engine stopping: context cancelled")
			e.queue.Close()
			return ctx.Err()

		case <-tick:
			// queued behind every payload already waiting
			e.queue.Enqueue(Event{Type: EventTypeTimer})

		case <-e.queue.Wait():
			// A token may be left over from events already dequeued, so an
			// empty queue only ends the loop once it is closed. A closed
			// signal channel fires immediately on every pass.
			if e.queue.Len() == 0 && e.queue.Closed() {
				e.log.Info("engine stopping: queue closed")
				return nil
			}
		}
	}
}

// processEvent routes an event. It reports whether the loop must stop.
// CRITICAL: Called only from Run() goroutine - single-writer guarantee.
func (e *Engine) processEvent(ctx context.Context, event Event) (bool, error) {
	switch event.Type {
	case EventTypeData:
		if event.Ref.IsZero() {
			e.log.Warn("data event without payload ignored")
			return false, nil
		}
		e.pending = append(e.pending, event.Ref)
		e.stats.Payloads++
		return false, nil

	case EventTypeStart:
		if err := e.flush(ctx, false); err != nil {
			return false, err
		}
		e.proc.Start()
		return false, nil

	case EventTypeTimer:
		e.stats.Ticks++
		return false, e.flush(ctx, true)

	case EventTypeEndOfStream:
		if err := e.flush(ctx, false); err != nil {
			return true, err
		}
		if err := e.proc.EndOfStream(ctx); err != nil {
			return true, e.fail(event, err)
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown event type: %d", event.Type)
	}
}

// flush hands the pending payloads to the processor as one invocation.
// Without payloads and without a timer there is nothing to do.
func (e *Engine) flush(ctx context.Context, timer bool) error {
	if len(e.pending) == 0 && !timer {
		return nil
	}
	in := merger.Input{Refs: e.pending, Timer: timer}
	e.pending = nil
	e.stats.Batches++

	err := e.proc.Process(ctx, in)
	if err == nil {
		return nil
	}
	ev := Event{Type: EventTypeData}
	if timer {
		ev.Type = EventTypeTimer
	}
	return e.fail(ev, err)
}

// fail logs err and returns it when it must stop the loop.
func (e *Engine) fail(event Event, err error) error {
	e.stats.Errors++
	if !merger.IsFatal(err) {
		e.log.Warn("event processing failed, continuing",
			"event", event.Type.String(),
			"error", err,
		)
		return nil
	}
	e.log.Error("event processing failed",
		"event", event.Type.String(),
		"error", err,
	)
	return fmt.Errorf("%s event: %w", event.Type, err)
}
