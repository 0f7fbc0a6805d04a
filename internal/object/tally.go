package object

import (
	"fmt"
	"maps"
	"slices"
)

// Tally counts occurrences per label. It merges itself, so it travels as a
// Custom representation.
type Tally struct {
	Title  string           `json:"title"`
	Counts map[string]int64 `json:"counts"`
}

// NewTally creates an empty tally.
func NewTally(title string) *Tally {
	return &Tally{Title: title, Counts: make(map[string]int64)}
}

func (t *Tally) Name() string     { return t.Title }
func (t *Tally) TypeName() string { return TypeTally }

// Add increments label by n.
func (t *Tally) Add(label string, n int64) {
	if t.Counts == nil {
		t.Counts = make(map[string]int64)
	}
	t.Counts[label] += n
}

// Labels returns the labels in sorted order.
func (t *Tally) Labels() []string {
	return slices.Sorted(maps.Keys(t.Counts))
}

// Merge adds other's counts into t.
func (t *Tally) Merge(other MergeInterface) error {
	o, ok := other.(*Tally)
	if !ok {
		return fmt.Errorf("%w: tally %q cannot merge %T", ErrUnsupportedObject, t.Title, other)
	}
	for label, n := range o.Counts {
		t.Add(label, n)
	}
	return nil
}
