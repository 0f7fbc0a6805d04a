package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_Counter(t *testing.T) {
	a := NewCounter("c", 3)
	b := NewCounter("c", 4)

	require.NoError(t, Merge(a, b))
	assert.Equal(t, int64(7), a.Value)
	assert.Equal(t, int64(4), b.Value, "other must not be modified")
}

func TestMerge_Histogram(t *testing.T) {
	a := NewHistogram("h", 4, 0, 8)
	b := NewHistogram("h", 4, 0, 8)
	a.Fill(1)
	b.Fill(1)
	b.Fill(7)
	b.Fill(100) // overflow: entry only

	require.NoError(t, Merge(a, b))
	assert.Equal(t, []int64{2, 0, 0, 1}, a.Bins)
	assert.Equal(t, int64(4), a.Entries)
	assert.Equal(t, int64(3), a.Sum())
}

func TestMerge_HistogramBinningMismatch(t *testing.T) {
	a := NewHistogram("h", 4, 0, 8)
	b := NewHistogram("h", 2, 0, 8)

	err := Merge(a, b)
	assert.ErrorContains(t, err, "binning")
}

func TestMerge_TypeMismatch(t *testing.T) {
	err := Merge(NewCounter("c", 1), NewHistogram("h", 1, 0, 1))
	assert.ErrorIs(t, err, ErrUnsupportedObject)

	err = Merge(nil, NewCounter("c", 1))
	assert.ErrorIs(t, err, ErrUnsupportedObject)
}

func TestMerge_DelegatesToMergeInterface(t *testing.T) {
	a := NewTally("t")
	a.Add("x", 1)
	b := NewTally("t")
	b.Add("x", 2)
	b.Add("y", 5)

	require.NoError(t, Merge(a, b))
	assert.Equal(t, map[string]int64{"x": 3, "y": 5}, a.Counts)
}

func TestFold_Single(t *testing.T) {
	acc := Single{Object: NewCounter("c", 3)}

	n, err := Fold(acc, Single{Object: NewCounter("c", 4)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(7), acc.Object.(*Counter).Value)
}

func TestFold_Custom(t *testing.T) {
	a := NewTally("t")
	a.Add("ok", 1)
	b := NewTally("t")
	b.Add("ok", 1)
	b.Add("bad", 1)

	n, err := Fold(Custom{Object: a}, Custom{Object: b})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"bad", "ok"}, a.Labels())
	assert.Equal(t, int64(2), a.Counts["ok"])
}

func TestFold_CollectionCountsElements(t *testing.T) {
	acc := Collection{Objects: []Object{NewCounter("a", 1), NewCounter("b", 2), NewCounter("c", 3)}}
	entry := Collection{Objects: []Object{NewCounter("a", 10), NewCounter("b", 20), NewCounter("c", 30)}}

	n, err := Fold(acc, entry)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int64(11), acc.Objects[0].(*Counter).Value)
	assert.Equal(t, int64(22), acc.Objects[1].(*Counter).Value)
	assert.Equal(t, int64(33), acc.Objects[2].(*Counter).Value)
}

func TestFold_CollectionLengthMismatch(t *testing.T) {
	acc := Collection{Objects: []Object{NewCounter("a", 1), NewCounter("b", 2)}}
	entry := Collection{Objects: []Object{NewCounter("a", 10)}}

	_, err := Fold(acc, entry)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Equal(t, int64(1), acc.Objects[0].(*Counter).Value, "nothing merged on mismatch")
}

func TestFold_KindMismatch(t *testing.T) {
	_, err := Fold(Single{Object: NewCounter("c", 1)}, Custom{Object: NewTally("t")})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Fold(Collection{}, Single{Object: NewCounter("c", 1)})
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = Fold(Custom{Object: NewTally("t")}, nil)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestFold_EmptyAccumulator(t *testing.T) {
	_, err := Fold(Empty{}, Single{Object: NewCounter("c", 1)})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRepresentation_IsEmptyAndLen(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(Empty{}))
	assert.True(t, IsEmpty(Single{}))
	assert.False(t, IsEmpty(Single{Object: NewCounter("c", 0)}))
	assert.False(t, IsEmpty(Collection{}))

	assert.Equal(t, 0, Len(Empty{}))
	assert.Equal(t, 1, Len(Custom{Object: NewTally("t")}))
	assert.Equal(t, 2, Len(Collection{Objects: []Object{NewCounter("a", 0), NewCounter("b", 0)}}))
}
