package merger

import (
	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

// Deserializer turns a raw payload into a representation.
// Implementations must not retain or modify the ref's slices.
type Deserializer interface {
	Deserialize(ref ir.DataRef) (object.Representation, error)
}

// SeedBuffer keeps one producer's latest payload in serialized form.
//
// The buffer owns copies of the spec, header and payload; the dispatcher's
// slices are never retained. Replacing or clearing drops the old copies.
type SeedBuffer struct {
	source  ir.SourceID
	spec    *ir.InputSpec
	header  []byte
	payload []byte
	held    bool
}

// Offer stores ref as the seed when the buffer is empty or when source is
// already the seed producer. It reports whether ref was accepted.
func (s *SeedBuffer) Offer(source ir.SourceID, ref ir.DataRef) bool {
	if s.held && s.source != source {
		return false
	}
	owned := ref.Clone()
	s.source = source
	s.spec = owned.Spec
	s.header = owned.Header
	s.payload = owned.Payload
	s.held = true
	return true
}

// IsEmpty reports whether no seed is held.
func (s *SeedBuffer) IsEmpty() bool {
	return !s.held
}

// Source returns the seed producer, or "" when empty.
func (s *SeedBuffer) Source() ir.SourceID {
	return s.source
}

// Ref returns a copy of the retained payload.
func (s *SeedBuffer) Ref() ir.DataRef {
	if !s.held {
		return ir.DataRef{}
	}
	return ir.DataRef{Spec: s.spec, Header: s.header, Payload: s.payload}.Clone()
}

// Materialize decodes the retained payload. It can be called any number of
// times: the deserializer works on a copy and every call yields fresh
// objects. An empty buffer materializes to object.Empty.
func (s *SeedBuffer) Materialize(d Deserializer) (object.Representation, error) {
	if !s.held {
		return object.Empty{}, nil
	}
	return d.Deserialize(s.Ref())
}

// Clear drops the retained buffers. Clearing an empty buffer is a no-op.
func (s *SeedBuffer) Clear() {
	s.source = ""
	s.spec = nil
	s.header = nil
	s.payload = nil
	s.held = false
}
