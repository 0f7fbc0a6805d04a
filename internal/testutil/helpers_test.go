package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/object"
)

func objectCodec() object.Codec { return object.Codec{} }

func header(t *testing.T, ref ir.DataRef) string {
	t.Helper()
	h, err := ref.DataHeader()
	require.NoError(t, err)
	return h.Description
}
