package ir

import (
	"fmt"
	"slices"
	"strings"
)

// InputSpec describes the input route a payload arrived on.
type InputSpec struct {
	Binding     string `json:"binding"`
	Origin      string `json:"origin"`
	Description string `json:"description"`
	SubSpec     uint32 `json:"sub_spec"`
}

// Clone returns a copy the caller owns. Nil stays nil.
func (s *InputSpec) Clone() *InputSpec {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// DataRef is one payload as handed over by the dispatcher: a spec, a binary
// header and the serialized object. The slices are borrowed.
type DataRef struct {
	Spec    *InputSpec
	Header  []byte
	Payload []byte
}

// NewDataRef frames payload with h. PayloadSize is filled in and a spec
// matching the header is attached.
func NewDataRef(h DataHeader, payload []byte) (DataRef, error) {
	h.PayloadSize = uint64(len(payload))
	header, err := h.MarshalBinary()
	if err != nil {
		return DataRef{}, fmt.Errorf("frame payload: %w", err)
	}
	return DataRef{
		Spec: &InputSpec{
			Binding:     strings.ToLower(h.Origin + "-" + h.Description),
			Origin:      h.Origin,
			Description: h.Description,
			SubSpec:     h.SubSpec,
		},
		Header:  header,
		Payload: payload,
	}, nil
}

// DataHeader parses the header and checks it against the payload length.
func (r DataRef) DataHeader() (DataHeader, error) {
	h, err := ParseHeader(r.Header)
	if err != nil {
		return DataHeader{}, err
	}
	if h.PayloadSize != uint64(len(r.Payload)) {
		return DataHeader{}, fmt.Errorf("payload size mismatch: header says %d, got %d", h.PayloadSize, len(r.Payload))
	}
	return h, nil
}

// Clone deep-copies spec, header and payload.
func (r DataRef) Clone() DataRef {
	return DataRef{
		Spec:    r.Spec.Clone(),
		Header:  slices.Clone(r.Header),
		Payload: slices.Clone(r.Payload),
	}
}

// IsZero reports whether the ref carries no header.
func (r DataRef) IsZero() bool {
	return r.Header == nil && r.Payload == nil && r.Spec == nil
}
