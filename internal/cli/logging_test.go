package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(buf, "text", slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("published", "seq", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=published")
	assert.Contains(t, buf.String(), "seq=3")
}

func TestNewLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := newLogger(buf, "json", slog.LevelDebug)

	logger.Debug("merging objects", "count", 2)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "merging objects", line["msg"])
	assert.Equal(t, "DEBUG", line["level"])
	assert.Equal(t, float64(2), line["count"])
}
