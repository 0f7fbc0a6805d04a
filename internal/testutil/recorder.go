package testutil

import (
	"context"
	"sync"

	"github.com/roach88/mergers/internal/merger"
)

// RecordingPublisher keeps every publication it receives.
//
// Thread-safety: all methods are safe for concurrent use, so tests can
// inspect it while an engine goroutine is publishing.
type RecordingPublisher struct {
	mu   sync.Mutex
	pubs []merger.Publication
	err  error
}

// NewRecordingPublisher creates an empty recorder.
func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

// Publish implements merger.Publisher.
func (p *RecordingPublisher) Publish(_ context.Context, pub merger.Publication) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.pubs = append(p.pubs, pub)
	return nil
}

// FailWith makes every following Publish return err. A nil err restores
// normal recording.
func (p *RecordingPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Publications returns a copy of the recorded publications.
func (p *RecordingPublisher) Publications() []merger.Publication {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]merger.Publication, len(p.pubs))
	copy(out, p.pubs)
	return out
}

// Len returns the number of recorded publications.
func (p *RecordingPublisher) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pubs)
}

// RecordingReporter keeps every metrics report.
type RecordingReporter struct {
	mu      sync.Mutex
	reports [][]merger.Sample
}

// NewRecordingReporter creates an empty recorder.
func NewRecordingReporter() *RecordingReporter {
	return &RecordingReporter{}
}

// Report implements merger.Reporter.
func (r *RecordingReporter) Report(_ context.Context, samples []merger.Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, append([]merger.Sample(nil), samples...))
	return nil
}

// Reports returns a copy of the recorded reports.
func (r *RecordingReporter) Reports() [][]merger.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]merger.Sample, len(r.reports))
	copy(out, r.reports)
	return out
}

// Last returns the latest report, or nil.
func (r *RecordingReporter) Last() []merger.Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reports) == 0 {
		return nil
	}
	return r.reports[len(r.reports)-1]
}
