package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a publication does not exist.
var ErrNotFound = errors.New("publication not found")

// Filter narrows ReadPublications.
type Filter struct {
	// SubSpec restricts results to one sub-spec when set.
	SubSpec *uint32
	// AfterSeq skips publications with seq <= AfterSeq.
	AfterSeq int64
	// Limit caps the result size; 0 means no limit.
	Limit int
}

const selectPublication = `
	SELECT id, seq, sub_spec, detector, kind, digest, body, producers,
	       objects_merged, updates_received, cycles_since_reset, engine_version
	FROM publications
`

// ReadPublications returns publications matching f.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) ReadPublications(ctx context.Context, f Filter) ([]Record, error) {
	query := selectPublication + ` WHERE seq > ?`
	args := []any{f.AfterSeq}
	if f.SubSpec != nil {
		query += ` AND sub_spec = ?`
		args = append(args, *f.SubSpec)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query publications: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publications: %w", err)
	}
	return records, nil
}

// ReadPublication returns the publication with the given ID.
// Returns ErrNotFound if it does not exist.
func (s *Store) ReadPublication(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectPublication+` WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// LastSeq returns the highest publication seq, or 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM publications`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// ReadSamples returns every stored sample named name, oldest report first.
// An empty name returns all samples.
func (s *Store) ReadSamples(ctx context.Context, name string) ([]SampleRecord, error) {
	query := `SELECT report_seq, name, value, mode FROM metric_samples`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY report_seq ASC, name COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []SampleRecord{}
	for rows.Next() {
		var smp SampleRecord
		if err := rows.Scan(&smp.ReportSeq, &smp.Name, &smp.Value, &smp.Mode); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.Seq,
		&rec.SubSpec,
		&rec.Detector,
		&rec.Kind,
		&rec.Digest,
		&rec.Body,
		&rec.Producers,
		&rec.ObjectsMerged,
		&rec.UpdatesReceived,
		&rec.CyclesSinceReset,
		&rec.EngineVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, err
	}
	if err != nil {
		return Record{}, fmt.Errorf("scan publication: %w", err)
	}
	return rec, nil
}
