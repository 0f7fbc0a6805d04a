package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

func TestSeedBuffer_OfferAcceptsOnlySeedProducer(t *testing.T) {
	var s SeedBuffer
	assert.True(t, s.IsEmpty())

	a := counterRef(t, "A", 1)
	b := counterRef(t, "B", 2)

	assert.True(t, s.Offer(sourceOf(t, a), a))
	assert.False(t, s.Offer(sourceOf(t, b), b))
	assert.True(t, s.Offer(sourceOf(t, a), counterRef(t, "A", 9)))
	assert.Equal(t, ir.SourceID("A/CNT/0"), s.Source())

	rep, err := s.Materialize(object.Codec{})
	require.NoError(t, err)
	assert.Equal(t, int64(9), rep.(object.Single).Object.(*object.Counter).Value)
}

func TestSeedBuffer_OwnsItsCopy(t *testing.T) {
	var s SeedBuffer
	ref := counterRef(t, "A", 5)
	s.Offer(sourceOf(t, ref), ref)

	// the dispatcher may recycle its buffers after delivery
	for i := range ref.Payload {
		ref.Payload[i] = 'x'
	}
	ref.Spec.Origin = "mutated"

	rep, err := s.Materialize(object.Codec{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), rep.(object.Single).Object.(*object.Counter).Value)
	assert.Equal(t, "A", s.Ref().Spec.Origin)
}

func TestSeedBuffer_MaterializeYieldsFreshObjects(t *testing.T) {
	var s SeedBuffer
	ref := counterRef(t, "A", 5)
	s.Offer(sourceOf(t, ref), ref)

	first, err := s.Materialize(object.Codec{})
	require.NoError(t, err)
	first.(object.Single).Object.(*object.Counter).Value = 100

	second, err := s.Materialize(object.Codec{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), second.(object.Single).Object.(*object.Counter).Value)
}

func TestSeedBuffer_Clear(t *testing.T) {
	var s SeedBuffer
	s.Clear()
	assert.True(t, s.IsEmpty())

	ref := counterRef(t, "A", 5)
	s.Offer(sourceOf(t, ref), ref)
	s.Clear()

	assert.True(t, s.IsEmpty())
	assert.Equal(t, ir.SourceID(""), s.Source())
	assert.True(t, s.Ref().IsZero())

	rep, err := s.Materialize(object.Codec{})
	require.NoError(t, err)
	assert.True(t, object.IsEmpty(rep))

	b := counterRef(t, "B", 1)
	assert.True(t, s.Offer(sourceOf(t, b), b), "any producer may seed after a clear")
}
