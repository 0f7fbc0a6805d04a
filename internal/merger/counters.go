package merger

// Metric names, as reported on every publish step.
const (
	MetricTotalObjectsMerged   = "total_objects_merged"
	MetricObjectsMerged        = "objects_merged_since_last_publication"
	MetricTotalUpdatesReceived = "total_updates_received"
	MetricUpdatesReceived      = "updates_received_since_last_publication"
	MetricCyclesSinceReset     = "cycles_since_reset"
)

// Counters is the merger's bookkeeping.
type Counters struct {
	CyclesSinceReset     int64 `json:"cycles_since_reset"`
	ObjectsMerged        int64 `json:"objects_merged"`
	TotalObjectsMerged   int64 `json:"total_objects_merged"`
	UpdatesReceived      int64 `json:"updates_received"`
	TotalUpdatesReceived int64 `json:"total_updates_received"`
}

// Samples returns all five counters as metric samples, always in the same order.
func (c Counters) Samples() []Sample {
	return []Sample{
		{Name: MetricTotalObjectsMerged, Value: c.TotalObjectsMerged, Mode: ModeRate},
		{Name: MetricObjectsMerged, Value: c.ObjectsMerged},
		{Name: MetricTotalUpdatesReceived, Value: c.TotalUpdatesReceived, Mode: ModeRate},
		{Name: MetricUpdatesReceived, Value: c.UpdatesReceived},
		{Name: MetricCyclesSinceReset, Value: c.CyclesSinceReset},
	}
}
