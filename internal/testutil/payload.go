package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

// CounterRef frames a single counter payload from origin.
func CounterRef(t testing.TB, origin string, value int64) ir.DataRef {
	t.Helper()
	return frame(t, origin, "CNT", object.Single{Object: object.NewCounter("cnt", value)})
}

// HistogramRef frames a single 10-bin [0,100) histogram filled with values.
func HistogramRef(t testing.TB, origin string, values ...int64) ir.DataRef {
	t.Helper()
	h := object.NewHistogram("hist", 10, 0, 100)
	for _, v := range values {
		h.Fill(v)
	}
	return frame(t, origin, "HST", object.Single{Object: h})
}

// TallyRef frames a custom tally counting each label once.
func TallyRef(t testing.TB, origin string, labels ...string) ir.DataRef {
	t.Helper()
	tl := object.NewTally("tally")
	for _, l := range labels {
		tl.Add(l, 1)
	}
	return frame(t, origin, "TLY", object.Custom{Object: tl})
}

// CollectionRef frames a collection with one counter per value.
func CollectionRef(t testing.TB, origin string, values ...int64) ir.DataRef {
	t.Helper()
	objs := make([]object.Object, len(values))
	for i, v := range values {
		objs[i] = object.NewCounter("cnt", v)
	}
	return frame(t, origin, "COL", object.Collection{Objects: objs})
}

func frame(t testing.TB, origin, description string, rep object.Representation) ir.DataRef {
	t.Helper()
	ref, err := object.Frame(origin, description, 0, rep)
	require.NoError(t, err)
	return ref
}

// CounterValue extracts the value of a published single counter.
func CounterValue(t testing.TB, rep object.Representation) int64 {
	t.Helper()
	single, ok := rep.(object.Single)
	require.True(t, ok, "expected single representation, got %T", rep)
	c, ok := single.Object.(*object.Counter)
	require.True(t, ok, "expected counter, got %T", single.Object)
	return c.Value
}
