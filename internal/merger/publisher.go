package merger

import (
	"context"

	"github.com/roach88/mergers/internal/object"
)

// Publication is one merged object handed to the publisher.
// Object is freshly materialized for this publication and is not touched
// by the merger afterwards.
type Publication struct {
	ID               string                `json:"id"`
	Seq              int64                 `json:"seq"`
	SubSpec          uint32                `json:"sub_spec"`
	Detector         string                `json:"detector"`
	Object           object.Representation `json:"-"`
	Producers        int                   `json:"producers"`
	ObjectsMerged    int64                 `json:"objects_merged"`
	UpdatesReceived  int64                 `json:"updates_received"`
	CyclesSinceReset int64                 `json:"cycles_since_reset"`
}

// Publisher receives merged objects keyed by sub-spec.
// A Publish error aborts the merge cycle.
type Publisher interface {
	Publish(ctx context.Context, pub Publication) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, pub Publication) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, pub Publication) error {
	return f(ctx, pub)
}
