package object

import (
	"fmt"
	"slices"
)

// Histogram is a fixed-width integer histogram over [Low, High).
// Values outside the range count as entries but land in no bin.
type Histogram struct {
	Title   string  `json:"title"`
	Low     int64   `json:"low"`
	High    int64   `json:"high"`
	Bins    []int64 `json:"bins"`
	Entries int64   `json:"entries"`
}

// NewHistogram creates an empty histogram with nbins bins.
func NewHistogram(title string, nbins int, low, high int64) *Histogram {
	return &Histogram{
		Title: title,
		Low:   low,
		High:  high,
		Bins:  make([]int64, nbins),
	}
}

func (h *Histogram) Name() string     { return h.Title }
func (h *Histogram) TypeName() string { return TypeHistogram }

// Fill records one value.
func (h *Histogram) Fill(x int64) {
	h.Entries++
	if x < h.Low || x >= h.High || len(h.Bins) == 0 {
		return
	}
	width := (h.High - h.Low) / int64(len(h.Bins))
	if width <= 0 {
		return
	}
	idx := int((x - h.Low) / width)
	if idx >= len(h.Bins) {
		idx = len(h.Bins) - 1
	}
	h.Bins[idx]++
}

// Sum returns the total of all bin contents.
func (h *Histogram) Sum() int64 {
	var s int64
	for _, b := range h.Bins {
		s += b
	}
	return s
}

func (h *Histogram) add(o *Histogram) error {
	if h.Low != o.Low || h.High != o.High || len(h.Bins) != len(o.Bins) {
		return fmt.Errorf("histogram %q: binning [%d,%d)x%d does not match [%d,%d)x%d",
			h.Title, h.Low, h.High, len(h.Bins), o.Low, o.High, len(o.Bins))
	}
	for i, v := range o.Bins {
		h.Bins[i] += v
	}
	h.Entries += o.Entries
	return nil
}

// Clone returns a deep copy.
func (h *Histogram) Clone() *Histogram {
	c := *h
	c.Bins = slices.Clone(h.Bins)
	return &c
}
