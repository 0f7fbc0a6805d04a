package ir

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind tags which mergeable representation a payload decodes into.
// The zero value is KindUnknown and is never valid on the wire.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindSingle is one object merged with the external merge function.
	KindSingle
	// KindCustom is one object that merges itself (MergeInterface).
	KindCustom
	// KindCollection is an ordered set of objects merged element-wise.
	KindCollection
)

// String returns the config/log spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindCustom:
		return "custom"
	case KindCollection:
		return "collection"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return KindSingle, nil
	case "custom":
		return KindCustom, nil
	case "collection":
		return KindCollection, nil
	default:
		return KindUnknown, fmt.Errorf("unknown payload kind %q", s)
	}
}

var headerMagic = [4]byte{'M', 'R', 'G', 'H'}

// fixed part: magic(4) version(1) kind(1) subspec(4) payload size(8)
const headerFixedSize = 4 + 1 + 1 + 4 + 8

var (
	ErrShortHeader   = errors.New("header too short")
	ErrBadMagic      = errors.New("header magic mismatch")
	ErrHeaderVersion = errors.New("unsupported header version")
)

// DataHeader describes one producer payload.
type DataHeader struct {
	Origin      string `json:"origin"`
	Description string `json:"description"`
	SubSpec     uint32 `json:"sub_spec"`
	Kind        Kind   `json:"kind"`
	PayloadSize uint64 `json:"payload_size"`
}

// MarshalBinary encodes the header in the wire layout.
func (h DataHeader) MarshalBinary() ([]byte, error) {
	if len(h.Origin) > math.MaxUint16 {
		return nil, fmt.Errorf("origin too long: %d bytes", len(h.Origin))
	}
	if len(h.Description) > math.MaxUint16 {
		return nil, fmt.Errorf("description too long: %d bytes", len(h.Description))
	}

	buf := make([]byte, 0, headerFixedSize+4+len(h.Origin)+len(h.Description))
	buf = append(buf, headerMagic[:]...)
	buf = append(buf, HeaderVersion, byte(h.Kind))
	buf = binary.BigEndian.AppendUint32(buf, h.SubSpec)
	buf = binary.BigEndian.AppendUint64(buf, h.PayloadSize)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(h.Origin)))
	buf = append(buf, h.Origin...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(h.Description)))
	buf = append(buf, h.Description...)
	return buf, nil
}

// ParseHeader decodes a header produced by MarshalBinary.
// The input is not retained.
func ParseHeader(b []byte) (DataHeader, error) {
	if len(b) < headerFixedSize {
		return DataHeader{}, ErrShortHeader
	}
	if [4]byte(b[:4]) != headerMagic {
		return DataHeader{}, ErrBadMagic
	}
	if b[4] != HeaderVersion {
		return DataHeader{}, fmt.Errorf("%w: %d", ErrHeaderVersion, b[4])
	}

	h := DataHeader{
		Kind:        Kind(b[5]),
		SubSpec:     binary.BigEndian.Uint32(b[6:10]),
		PayloadSize: binary.BigEndian.Uint64(b[10:18]),
	}

	rest := b[headerFixedSize:]
	origin, rest, err := readString(rest)
	if err != nil {
		return DataHeader{}, fmt.Errorf("origin: %w", err)
	}
	desc, _, err := readString(rest)
	if err != nil {
		return DataHeader{}, fmt.Errorf("description: %w", err)
	}
	h.Origin = origin
	h.Description = desc
	return h, nil
}

func readString(b []byte) (string, []byte, error) {
	if len(b) < 2 {
		return "", nil, ErrShortHeader
	}
	n := int(binary.BigEndian.Uint16(b))
	b = b[2:]
	if len(b) < n {
		return "", nil, ErrShortHeader
	}
	return string(b[:n]), b[n:], nil
}
