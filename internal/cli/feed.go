package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/mergers/internal/engine"
	"github.com/roach88/mergers/internal/ir"
)

// Control events accepted on the input feed.
const (
	feedEventStart       = "start"
	feedEventTick        = "tick"
	feedEventEndOfStream = "end_of_stream"
)

// maxFeedLine bounds a single JSON line on the input feed.
const maxFeedLine = 16 << 20

// feedLine is one line of the JSONL input feed: either a control event
// ({"event":"tick"}) or a producer payload.
//
// Payload lines carry the producer header fields and the serialized object
// in the object codec's format, for example:
//
//	{"origin":"A","description":"CNT","kind":"single",
//	 "payload":{"type":"counter","object":{"title":"CNT","value":3}}}
type feedLine struct {
	Event       string          `json:"event,omitempty"`
	Origin      string          `json:"origin,omitempty"`
	Description string          `json:"description,omitempty"`
	SubSpec     uint32          `json:"sub_spec,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// toEvent converts the line to an engine event.
func (l feedLine) toEvent() (engine.Event, error) {
	switch l.Event {
	case feedEventStart:
		return engine.Event{Type: engine.EventTypeStart}, nil
	case feedEventTick:
		return engine.Event{Type: engine.EventTypeTimer}, nil
	case feedEventEndOfStream:
		return engine.Event{Type: engine.EventTypeEndOfStream}, nil
	case "":
	default:
		return engine.Event{}, fmt.Errorf("unknown event %q", l.Event)
	}

	if l.Origin == "" || l.Description == "" {
		return engine.Event{}, errors.New("payload line requires origin and description")
	}
	if len(l.Payload) == 0 {
		return engine.Event{}, errors.New("payload line requires payload")
	}
	kind, err := ir.ParseKind(l.Kind)
	if err != nil {
		return engine.Event{}, err
	}
	ref, err := ir.NewDataRef(ir.DataHeader{
		Origin:      l.Origin,
		Description: l.Description,
		SubSpec:     l.SubSpec,
		Kind:        kind,
	}, bytes.Clone(l.Payload))
	if err != nil {
		return engine.Event{}, err
	}
	return engine.DataEvent(ref), nil
}

// feedStats counts what the feeder enqueued.
type feedStats struct {
	Lines    int
	Payloads int
	Controls int
	Ended    bool
}

// feed reads the JSONL input and enqueues one event per line. Blank lines
// are skipped. When the input is exhausted without an end_of_stream line,
// one is enqueued so the engine publishes a final time and returns.
//
// feed stops early, without error, when the engine stops accepting events.
// It returns as soon as ctx is done, even while a read is blocked.
func feed(ctx context.Context, r io.Reader, eng *engine.Engine) (feedStats, error) {
	var stats feedStats

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanErr <- scanLines(ctx, r, lines)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		var (
			raw []byte
			ok  bool
		)
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case raw, ok = <-lines:
		}
		if !ok {
			break
		}
		stats.Lines++

		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}

		var line feedLine
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&line); err != nil {
			return stats, fmt.Errorf("input line %d: %w", stats.Lines, err)
		}
		ev, err := line.toEvent()
		if err != nil {
			return stats, fmt.Errorf("input line %d: %w", stats.Lines, err)
		}

		if !eng.Enqueue(ev) {
			return stats, nil
		}
		if ev.Type == engine.EventTypeData {
			stats.Payloads++
		} else {
			stats.Controls++
		}
		if ev.Type == engine.EventTypeEndOfStream {
			stats.Ended = true
			return stats, nil
		}
	}
	if err := <-scanErr; err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}
		return stats, fmt.Errorf("read input: %w", err)
	}

	eng.Enqueue(engine.Event{Type: engine.EventTypeEndOfStream})
	stats.Ended = true
	return stats, nil
}

// scanLines sends every line of r on out until r is exhausted or ctx is done.
// Each line is a copy owned by the receiver.
func scanLines(ctx context.Context, r io.Reader, out chan<- []byte) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFeedLine)
	for scanner.Scan() {
		select {
		case out <- bytes.Clone(scanner.Bytes()):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}
