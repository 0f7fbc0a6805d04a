package merger

import (
	"context"
	"errors"
	"log/slog"
)

// DerivedMode tells the metrics backend how to interpret a sample.
type DerivedMode int

const (
	// ModeNone reports the value as is.
	ModeNone DerivedMode = iota
	// ModeRate asks the backend to derive a rate from successive values.
	ModeRate
)

func (m DerivedMode) String() string {
	if m == ModeRate {
		return "rate"
	}
	return "none"
}

// Sample is one named counter value.
type Sample struct {
	Name  string      `json:"name"`
	Value int64       `json:"value"`
	Mode  DerivedMode `json:"mode"`
}

// Reporter receives the counters once per publish step.
// Report errors are logged by the merger and never abort a cycle.
type Reporter interface {
	Report(ctx context.Context, samples []Sample) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, samples []Sample) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, samples []Sample) error {
	return f(ctx, samples)
}

// SlogReporter writes samples to a structured logger.
type SlogReporter struct {
	Logger *slog.Logger
	Level  slog.Level
}

// Report logs one line carrying every sample as an attribute.
func (r SlogReporter) Report(ctx context.Context, samples []Sample) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := make([]slog.Attr, 0, len(samples))
	for _, s := range samples {
		attrs = append(attrs, slog.Int64(s.Name, s.Value))
	}
	logger.LogAttrs(ctx, r.Level, "merger metrics", attrs...)
	return nil
}

// MultiReporter fans samples out to several reporters and joins their errors.
type MultiReporter []Reporter

// Report calls every reporter, even after a failure.
func (m MultiReporter) Report(ctx context.Context, samples []Sample) error {
	var errs []error
	for _, r := range m {
		if err := r.Report(ctx, samples); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
