package merger

import (
	"fmt"
	"strings"
	"time"
)

// RetentionMode selects when accumulated state is discarded.
type RetentionMode int

const (
	// FullHistory never discards: each publication covers the whole run.
	FullHistory RetentionMode = iota
	// LastDifference discards after every publication: each publication
	// covers only what arrived since the previous one.
	LastDifference
	// NCycles discards after every Retention.Cycles publications.
	NCycles
)

// String returns the config spelling of the mode.
func (m RetentionMode) String() string {
	switch m {
	case FullHistory:
		return "full_history"
	case LastDifference:
		return "last_difference"
	case NCycles:
		return "n_cycles"
	default:
		return fmt.Sprintf("retention(%d)", int(m))
	}
}

// ParseRetentionMode is the inverse of RetentionMode.String.
func ParseRetentionMode(s string) (RetentionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full_history":
		return FullHistory, nil
	case "last_difference":
		return LastDifference, nil
	case "n_cycles":
		return NCycles, nil
	default:
		return FullHistory, fmt.Errorf("unknown retention mode %q", s)
	}
}

// Retention is the configured retention policy.
type Retention struct {
	Mode RetentionMode
	// Cycles is only used by NCycles.
	Cycles int
}

// Validate checks that the policy is usable.
func (r Retention) Validate() error {
	switch r.Mode {
	case FullHistory, LastDifference:
		return nil
	case NCycles:
		if r.Cycles < 1 {
			return fmt.Errorf("n_cycles retention requires cycles >= 1, got %d", r.Cycles)
		}
		return nil
	default:
		return fmt.Errorf("unknown retention mode %d", int(r.Mode))
	}
}

func (r Retention) String() string {
	if r.Mode == NCycles {
		return fmt.Sprintf("%s(%d)", r.Mode, r.Cycles)
	}
	return r.Mode.String()
}

// Default configuration values.
const (
	DefaultDetectorName      = "TST"
	DefaultPublicationPeriod = 10 * time.Second
)

// Config holds the merger settings.
type Config struct {
	// SubSpec keys the published object.
	SubSpec uint32
	// DetectorName is attached to every log line.
	DetectorName string
	Retention    Retention
	// PublicationPeriod is the tick interval used by the engine.
	PublicationPeriod time.Duration
}

// DefaultConfig returns a full-history configuration.
func DefaultConfig() Config {
	return Config{
		DetectorName:      DefaultDetectorName,
		Retention:         Retention{Mode: FullHistory},
		PublicationPeriod: DefaultPublicationPeriod,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Retention.Validate(); err != nil {
		return err
	}
	if c.PublicationPeriod < 0 {
		return fmt.Errorf("publication period must not be negative, got %s", c.PublicationPeriod)
	}
	return nil
}
