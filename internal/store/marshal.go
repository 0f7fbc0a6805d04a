package store

import (
	"fmt"

	"github.com/roach88/mergers/internal/ir"
	"github.com/roach88/mergers/internal/merger"
	"github.com/roach88/mergers/internal/object"
)

// Record is one stored publication.
type Record struct {
	ID               string `json:"id" parquet:"id"`
	Seq              int64  `json:"seq" parquet:"seq"`
	SubSpec          uint32 `json:"sub_spec" parquet:"sub_spec"`
	Detector         string `json:"detector" parquet:"detector"`
	Kind             string `json:"kind" parquet:"kind"`
	Digest           string `json:"digest" parquet:"digest"`
	Body             []byte `json:"body" parquet:"body"`
	Producers        int64  `json:"producers" parquet:"producers"`
	ObjectsMerged    int64  `json:"objects_merged" parquet:"objects_merged"`
	UpdatesReceived  int64  `json:"updates_received" parquet:"updates_received"`
	CyclesSinceReset int64  `json:"cycles_since_reset" parquet:"cycles_since_reset"`
	EngineVersion    string `json:"engine_version" parquet:"engine_version"`
}

// Decode rebuilds the published object.
func (r Record) Decode() (object.Representation, error) {
	kind, err := ir.ParseKind(r.Kind)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	rep, err := object.Decode(kind, r.Body)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return rep, nil
}

// newRecord serializes a publication for storage.
func newRecord(pub merger.Publication) (Record, error) {
	kind, body, err := object.Encode(pub.Object)
	if err != nil {
		return Record{}, fmt.Errorf("encode publication %s: %w", pub.ID, err)
	}
	return Record{
		ID:               pub.ID,
		Seq:              pub.Seq,
		SubSpec:          pub.SubSpec,
		Detector:         pub.Detector,
		Kind:             kind.String(),
		Digest:           ir.PublicationDigest(pub.SubSpec, body),
		Body:             body,
		Producers:        int64(pub.Producers),
		ObjectsMerged:    pub.ObjectsMerged,
		UpdatesReceived:  pub.UpdatesReceived,
		CyclesSinceReset: pub.CyclesSinceReset,
		EngineVersion:    ir.EngineVersion,
	}, nil
}

// SampleRecord is one stored metric sample.
type SampleRecord struct {
	ReportSeq int64  `json:"report_seq"`
	Name      string `json:"name"`
	Value     int64  `json:"value"`
	Mode      string `json:"mode"`
}
