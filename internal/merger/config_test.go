package merger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetentionMode(t *testing.T) {
	tests := []struct {
		in   string
		want RetentionMode
	}{
		{"", FullHistory},
		{"full_history", FullHistory},
		{"last_difference", LastDifference},
		{"n_cycles", NCycles},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRetentionMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRetentionMode("forever")
	assert.ErrorContains(t, err, "unknown retention mode")
}

func TestRetention_ValidateAndString(t *testing.T) {
	assert.NoError(t, Retention{Mode: FullHistory}.Validate())
	assert.NoError(t, Retention{Mode: LastDifference}.Validate())
	assert.NoError(t, Retention{Mode: NCycles, Cycles: 3}.Validate())
	assert.Error(t, Retention{Mode: NCycles}.Validate())
	assert.Error(t, Retention{Mode: RetentionMode(42)}.Validate())

	assert.Equal(t, "full_history", Retention{Mode: FullHistory}.String())
	assert.Equal(t, "n_cycles(3)", Retention{Mode: NCycles, Cycles: 3}.String())
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultDetectorName, cfg.DetectorName)
	assert.Equal(t, 10*time.Second, cfg.PublicationPeriod)

	cfg.PublicationPeriod = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "must not be negative")
}
