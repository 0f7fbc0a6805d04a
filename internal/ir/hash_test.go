package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadDigest_Deterministic(t *testing.T) {
	a := PayloadDigest(KindSingle, []byte(`{"value":3}`))
	b := PayloadDigest(KindSingle, []byte(`{"value":3}`))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestPayloadDigest_KindMatters(t *testing.T) {
	a := PayloadDigest(KindSingle, []byte(`{}`))
	b := PayloadDigest(KindCustom, []byte(`{}`))
	assert.NotEqual(t, a, b)
}

func TestPublicationDigest_DomainSeparated(t *testing.T) {
	body := []byte(`{"value":7}`)
	assert.NotEqual(t, PublicationDigest(0, body), PublicationDigest(1, body))
	assert.NotEqual(t, PublicationDigest(0, body), PayloadDigest(KindSingle, body))
}
