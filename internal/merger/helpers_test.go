package merger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

// recorder captures publications and metric reports.
type recorder struct {
	pubs    []Publication
	reports [][]Sample
	failPub error
}

func (r *recorder) Publish(_ context.Context, pub Publication) error {
	if r.failPub != nil {
		return r.failPub
	}
	r.pubs = append(r.pubs, pub)
	return nil
}

func (r *recorder) Report(_ context.Context, samples []Sample) error {
	r.reports = append(r.reports, samples)
	return nil
}

func (r *recorder) last() Publication {
	return r.pubs[len(r.pubs)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMerger(t *testing.T, retention Retention, opts ...Option) (*Merger, *recorder) {
	t.Helper()
	rec := &recorder{}
	cfg := DefaultConfig()
	cfg.Retention = retention
	opts = append([]Option{
		WithReporter(rec),
		WithLogger(quietLogger()),
		WithIDGenerator(NewSequenceGenerator("pub")),
	}, opts...)
	m, err := New(cfg, rec, opts...)
	require.NoError(t, err)
	m.Start()
	return m, rec
}

func counterRef(t *testing.T, origin string, value int64) ir.DataRef {
	t.Helper()
	ref, err := object.Frame(origin, "CNT", 0, object.Single{Object: object.NewCounter("cnt", value)})
	require.NoError(t, err)
	return ref
}

func tallyRef(t *testing.T, origin string, labels ...string) ir.DataRef {
	t.Helper()
	tl := object.NewTally("flags")
	for _, l := range labels {
		tl.Add(l, 1)
	}
	ref, err := object.Frame(origin, "TLY", 0, object.Custom{Object: tl})
	require.NoError(t, err)
	return ref
}

func collectionRef(t *testing.T, origin string, values ...int64) ir.DataRef {
	t.Helper()
	objs := make([]object.Object, len(values))
	for i, v := range values {
		objs[i] = object.NewCounter("cnt", v)
	}
	ref, err := object.Frame(origin, "COL", 0, object.Collection{Objects: objs})
	require.NoError(t, err)
	return ref
}

func counterValue(t *testing.T, pub Publication) int64 {
	t.Helper()
	single, ok := pub.Object.(object.Single)
	require.True(t, ok, "expected single, got %T", pub.Object)
	c, ok := single.Object.(*object.Counter)
	require.True(t, ok)
	return c.Value
}

func tick(refs ...ir.DataRef) Input {
	return Input{Refs: refs, Timer: true}
}

func data(refs ...ir.DataRef) Input {
	return Input{Refs: refs}
}

// emptyDecoder materializes every payload into nothing.
type emptyDecoder struct{}

func (emptyDecoder) Deserialize(ir.DataRef) (object.Representation, error) {
	return object.Empty{}, nil
}

// failingDecoder rejects every payload.
type failingDecoder struct{}

func (failingDecoder) Deserialize(ir.DataRef) (object.Representation, error) {
	return nil, errors.New("boom")
}

func sourceOf(t *testing.T, ref ir.DataRef) ir.SourceID {
	t.Helper()
	id, err := ir.IdentifyRef(ref)
	require.NoError(t, err)
	return id
}
