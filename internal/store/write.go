package store

import (
	"context"
	"fmt"

	"github.com/roach88/mergers/internal/merger"
)

// WritePublication appends a publication to the log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WritePublication(ctx context.Context, pub merger.Publication) error {
	rec, err := newRecord(pub)
	if err != nil {
		return fmt.Errorf("write publication: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO publications
		(id, seq, sub_spec, detector, kind, digest, body, producers,
		 objects_merged, updates_received, cycles_since_reset, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Seq,
		rec.SubSpec,
		rec.Detector,
		rec.Kind,
		rec.Digest,
		rec.Body,
		rec.Producers,
		rec.ObjectsMerged,
		rec.UpdatesReceived,
		rec.CyclesSinceReset,
		rec.EngineVersion,
	)
	if err != nil {
		return fmt.Errorf("write publication: %w", err)
	}
	return nil
}

// WriteSamples stores one metrics report under the next report number and
// returns that number. All samples are written in a single transaction.
func (s *Store) WriteSamples(ctx context.Context, samples []merger.Sample) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write samples: begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(report_seq), 0) + 1 FROM metric_samples`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write samples: next report: %w", err)
	}

	for _, smp := range samples {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO metric_samples (report_seq, name, value, mode)
			VALUES (?, ?, ?, ?)
		`, seq, smp.Name, smp.Value, smp.Mode.String())
		if err != nil {
			return 0, fmt.Errorf("write sample %s: %w", smp.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write samples: commit: %w", err)
	}
	return seq, nil
}
