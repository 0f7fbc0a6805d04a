package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/roach88/mergers/internal/merger"
)

// Config is the file-level configuration.
type Config struct {
	Merger   MergerSection `json:"merger" yaml:"merger" toml:"merger"`
	Database string        `json:"database" yaml:"database" toml:"database"`
	Log      LogSection    `json:"log" yaml:"log" toml:"log"`
}

// MergerSection configures the merger itself.
type MergerSection struct {
	SubSpec   uint32 `json:"sub_spec" yaml:"sub_spec" toml:"sub_spec"`
	Detector  string `json:"detector" yaml:"detector" toml:"detector"`
	Retention string `json:"retention" yaml:"retention" toml:"retention"`
	// Cycles is only read for n_cycles retention.
	Cycles int    `json:"cycles" yaml:"cycles" toml:"cycles"`
	Period string `json:"period" yaml:"period" toml:"period"`
}

// LogSection configures the log handler.
type LogSection struct {
	Level string `json:"level" yaml:"level" toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Merger.Detector == "" {
		c.Merger.Detector = merger.DefaultDetectorName
	}
	if c.Merger.Retention == "" {
		c.Merger.Retention = merger.FullHistory.String()
	}
	if c.Merger.Period == "" {
		c.Merger.Period = merger.DefaultPublicationPeriod.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ToMergerConfig converts the file configuration to a merger.Config.
func (c Config) ToMergerConfig() (merger.Config, error) {
	mode, err := merger.ParseRetentionMode(c.Merger.Retention)
	if err != nil {
		return merger.Config{}, err
	}
	period, err := time.ParseDuration(c.Merger.Period)
	if err != nil {
		return merger.Config{}, fmt.Errorf("parse period: %w", err)
	}

	cfg := merger.Config{
		SubSpec:           c.Merger.SubSpec,
		DetectorName:      c.Merger.Detector,
		Retention:         merger.Retention{Mode: mode},
		PublicationPeriod: period,
	}
	if mode == merger.NCycles {
		cfg.Retention.Cycles = c.Merger.Cycles
	}
	if err := cfg.Validate(); err != nil {
		return merger.Config{}, err
	}
	return cfg, nil
}

// LogLevel maps log.level to a slog level. Unknown values mean info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
