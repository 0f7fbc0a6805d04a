package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/merger"
	"github.com/roach88/mergers/internal/testutil"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMerger(t *testing.T, retention merger.Retention) (*merger.Merger, *testutil.RecordingPublisher) {
	t.Helper()
	pub := testutil.NewRecordingPublisher()
	cfg := merger.DefaultConfig()
	cfg.Retention = retention
	m, err := merger.New(cfg, pub,
		merger.WithLogger(quiet()),
		merger.WithReporter(testutil.NewRecordingReporter()),
		merger.WithIDGenerator(merger.NewSequenceGenerator("pub")),
	)
	require.NoError(t, err)
	return m, pub
}

// spyProcessor records every call made by the engine.
type spyProcessor struct {
	calls  []string
	inputs []merger.Input
	err    error
}

func (s *spyProcessor) Start() { s.calls = append(s.calls, "start") }

func (s *spyProcessor) Process(_ context.Context, in merger.Input) error {
	s.calls = append(s.calls, "process")
	s.inputs = append(s.inputs, in)
	return s.err
}

func (s *spyProcessor) EndOfStream(context.Context) error {
	s.calls = append(s.calls, "eos")
	return nil
}

func TestEngine_BatchesDataBeforeTimer(t *testing.T) {
	spy := &spyProcessor{}
	e := New(spy, WithLogger(quiet()))

	e.Enqueue(Event{Type: EventTypeStart})
	e.Enqueue(DataEvent(ref("A")))
	e.Enqueue(DataEvent(ref("B")))
	e.Enqueue(Event{Type: EventTypeTimer})
	e.Enqueue(Event{Type: EventTypeEndOfStream})

	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []string{"start", "process", "eos"}, spy.calls)
	require.Len(t, spy.inputs, 1)
	assert.True(t, spy.inputs[0].Timer)
	assert.Len(t, spy.inputs[0].Refs, 2)

	st := e.Stats()
	assert.Equal(t, int64(2), st.Payloads)
	assert.Equal(t, int64(1), st.Ticks)
}

func TestEngine_EndOfStreamFlushesPendingData(t *testing.T) {
	spy := &spyProcessor{}
	e := New(spy, WithLogger(quiet()))

	e.Enqueue(DataEvent(ref("A")))
	e.Enqueue(Event{Type: EventTypeEndOfStream})
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []string{"process", "eos"}, spy.calls)
	assert.False(t, spy.inputs[0].Timer)
	assert.False(t, e.Enqueue(Event{Type: EventTypeTimer}), "queue closed after end of stream")
}

func TestEngine_IgnoresEmptyDataEvents(t *testing.T) {
	spy := &spyProcessor{}
	e := New(spy, WithLogger(quiet()))

	e.Enqueue(Event{Type: EventTypeData})
	e.Enqueue(Event{Type: EventTypeEndOfStream})
	require.NoError(t, e.Run(context.Background()))

	assert.Equal(t, []string{"eos"}, spy.calls)
}

func TestEngine_DecodeErrorsDoNotStopTheLoop(t *testing.T) {
	spy := &spyProcessor{err: &merger.RuntimeError{Code: merger.ErrCodeDecode, Message: "bad"}}
	e := New(spy, WithLogger(quiet()))

	e.Enqueue(DataEvent(ref("A")))
	e.Enqueue(Event{Type: EventTypeTimer})
	e.Enqueue(Event{Type: EventTypeEndOfStream})

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, int64(1), e.Stats().Errors)
	assert.Equal(t, []string{"process", "eos"}, spy.calls)
}

func TestEngine_FatalErrorStopsTheLoop(t *testing.T) {
	spy := &spyProcessor{err: &merger.RuntimeError{Code: merger.ErrCodeInvariant, Message: "broken"}}
	e := New(spy, WithLogger(quiet()))

	e.Enqueue(Event{Type: EventTypeTimer})
	e.Enqueue(Event{Type: EventTypeEndOfStream})

	err := e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, merger.IsInvariantError(err))
	assert.ErrorContains(t, err, "timer event")
	assert.Equal(t, []string{"process"}, spy.calls, "end of stream never reached")
}

func TestEngine_StopDrainsQueue(t *testing.T) {
	spy := &spyProcessor{}
	e := New(spy, WithLogger(quiet()))

	e.Enqueue(DataEvent(ref("A")))
	e.Stop()

	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, []string{"process"}, spy.calls)
}

func TestEngine_DrainedQueueKeepsRunning(t *testing.T) {
	spy := &spyProcessor{}
	e := New(spy, WithLogger(quiet()))
	e.Enqueue(DataEvent(ref("A")))

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		t.Fatalf("engine stopped on a drained queue: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	require.True(t, e.Enqueue(Event{Type: EventTypeEndOfStream}), "queue must stay open")

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop at end of stream")
	}
	assert.Equal(t, []string{"process", "eos"}, spy.calls)
}

func TestEngine_RunStopsOnContext(t *testing.T) {
	e := New(&spyProcessor{}, WithLogger(quiet()))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}
}

func TestEngine_WithMerger(t *testing.T) {
	m, pub := newMerger(t, merger.Retention{Mode: merger.LastDifference})
	e := New(m, WithLogger(quiet()))

	e.Enqueue(Event{Type: EventTypeStart})
	e.Enqueue(DataEvent(testutil.CounterRef(t, "A", 3)))
	e.Enqueue(DataEvent(testutil.CounterRef(t, "B", 4)))
	e.Enqueue(Event{Type: EventTypeTimer})
	e.Enqueue(Event{Type: EventTypeTimer})
	e.Enqueue(DataEvent(testutil.CounterRef(t, "B", 2)))
	e.Enqueue(Event{Type: EventTypeEndOfStream})

	require.NoError(t, e.Run(context.Background()))

	pubs := pub.Publications()
	require.Len(t, pubs, 2)
	assert.Equal(t, int64(7), testutil.CounterValue(t, pubs[0].Object))
	assert.Equal(t, int64(2), testutil.CounterValue(t, pubs[1].Object))
	assert.Equal(t, merger.StateAccumulating, m.State())
}

func TestEngine_PeriodicTimer(t *testing.T) {
	m, pub := newMerger(t, merger.Retention{Mode: merger.FullHistory})
	e := New(m, WithLogger(quiet()), WithPeriod(5*time.Millisecond))

	e.Enqueue(Event{Type: EventTypeStart})
	e.Enqueue(DataEvent(testutil.CounterRef(t, "A", 1)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.Eventually(t, func() bool { return pub.Len() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	for _, p := range pub.Publications() {
		assert.Equal(t, int64(1), testutil.CounterValue(t, p.Object))
	}
}
