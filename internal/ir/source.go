package ir

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SourceID identifies one logical producer. Two payloads from the same
// producer always resolve to the same SourceID within a run.
type SourceID string

// Identify derives the producer identity from a payload header.
// Format: "origin/description/subspec", with origin and description NFC
// normalized. Whitespace is significant.
func Identify(h DataHeader) SourceID {
	var b strings.Builder
	b.WriteString(norm.NFC.String(h.Origin))
	b.WriteByte('/')
	b.WriteString(norm.NFC.String(h.Description))
	b.WriteByte('/')
	b.WriteString(strconv.FormatUint(uint64(h.SubSpec), 10))
	return SourceID(b.String())
}

// IdentifyRef parses the header of r and identifies its producer.
func IdentifyRef(r DataRef) (SourceID, error) {
	h, err := ParseHeader(r.Header)
	if err != nil {
		return "", err
	}
	return Identify(h), nil
}
