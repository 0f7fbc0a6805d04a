package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentify_Format(t *testing.T) {
	id := Identify(DataHeader{Origin: "TPC", Description: "PID", SubSpec: 7})
	assert.Equal(t, SourceID("TPC/PID/7"), id)
}

func TestIdentify_StableAcrossPayloads(t *testing.T) {
	a := Identify(DataHeader{Origin: "TPC", Description: "PID", SubSpec: 1, Kind: KindSingle, PayloadSize: 10})
	b := Identify(DataHeader{Origin: "TPC", Description: "PID", SubSpec: 1, Kind: KindSingle, PayloadSize: 99})
	assert.Equal(t, a, b)
}

func TestIdentify_DistinguishesSubSpec(t *testing.T) {
	a := Identify(DataHeader{Origin: "TPC", Description: "PID", SubSpec: 1})
	b := Identify(DataHeader{Origin: "TPC", Description: "PID", SubSpec: 2})
	assert.NotEqual(t, a, b)
}

func TestIdentify_NFCNormalization(t *testing.T) {
	// "é" precomposed vs "e" + combining acute accent
	composed := Identify(DataHeader{Origin: "caf\u00e9", Description: "H"})
	decomposed := Identify(DataHeader{Origin: "cafe\u0301", Description: "H"})
	assert.Equal(t, composed, decomposed)

}

func TestIdentify_WhitespaceIsSignificant(t *testing.T) {
	padded := Identify(DataHeader{Origin: " TPC", Description: "PID"})
	plain := Identify(DataHeader{Origin: "TPC", Description: "PID"})
	assert.NotEqual(t, plain, padded)
	assert.Equal(t, SourceID(" TPC/PID/0"), padded)
}

func TestIdentifyRef(t *testing.T) {
	ref, err := NewDataRef(DataHeader{Origin: "ITS", Description: "CLS", SubSpec: 3, Kind: KindCustom}, []byte("{}"))
	require.NoError(t, err)

	id, err := IdentifyRef(ref)
	require.NoError(t, err)
	assert.Equal(t, SourceID("ITS/CLS/3"), id)

	_, err = IdentifyRef(DataRef{Header: []byte("nope")})
	assert.Error(t, err)
}
