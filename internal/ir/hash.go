package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Domain prefixes for content digests.
// Version suffix enables future algorithm migration.
const (
	DomainPayload     = "mergers/payload/v1"
	DomainPublication = "mergers/publication/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PayloadDigest hashes a serialized object together with its kind.
func PayloadDigest(kind Kind, body []byte) string {
	data := make([]byte, 0, len(body)+1)
	data = append(data, byte(kind))
	data = append(data, body...)
	return hashWithDomain(DomainPayload, data)
}

// PublicationDigest hashes a published object body under its sub-spec.
// Identical merged content on the same sub-spec yields the same digest.
func PublicationDigest(subSpec uint32, body []byte) string {
	data := strconv.AppendUint(nil, uint64(subSpec), 10)
	data = append(data, 0x00)
	data = append(data, body...)
	return hashWithDomain(DomainPublication, data)
}
