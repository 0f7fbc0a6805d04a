package store

import (
	"context"

	"github.com/roach88/mergers/internal/merger"
)

// Publisher writes every publication to the store.
type Publisher struct {
	Store *Store
}

// Publish implements merger.Publisher.
func (p Publisher) Publish(ctx context.Context, pub merger.Publication) error {
	return p.Store.WritePublication(ctx, pub)
}

// Reporter writes every metrics report to the store.
type Reporter struct {
	Store *Store
}

// Report implements merger.Reporter.
func (r Reporter) Report(ctx context.Context, samples []merger.Sample) error {
	_, err := r.Store.WriteSamples(ctx, samples)
	return err
}

var (
	_ merger.Publisher = Publisher{}
	_ merger.Reporter  = Reporter{}
)
