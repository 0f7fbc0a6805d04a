package store

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/merger"
	"github.com/roach88/mergers/internal/object"
)

func TestAdapters_WithMerger(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	m, err := merger.New(merger.DefaultConfig(), Publisher{Store: s},
		merger.WithReporter(Reporter{Store: s}),
		merger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	m.Start()

	a, err := object.Frame("A", "CNT", 0, object.Single{Object: object.NewCounter("cnt", 3)})
	require.NoError(t, err)
	b, err := object.Frame("B", "CNT", 0, object.Single{Object: object.NewCounter("cnt", 4)})
	require.NoError(t, err)

	require.NoError(t, m.Process(ctx, merger.Input{Refs: []ir.DataRef{a, b}, Timer: true}))

	recs, err := s.ReadPublications(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(2), recs[0].ObjectsMerged)
	assert.Len(t, recs[0].ID, 36, "default IDs are UUIDv7")

	samples, err := s.ReadSamples(ctx, merger.MetricObjectsMerged)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, int64(2), samples[0].Value)
}
