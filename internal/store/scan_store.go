package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/agendify/internal/model"
)

type scanRunRow struct {
	ID         string    `db:"id"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
	Addresses  int       `db:"addresses"`
	Messages   int       `db:"messages"`
	Extracted  int       `db:"extracted"`
	Added      int       `db:"added"`
	Failed     int       `db:"failed"`
}

// RecordScanRun appends run to the scan history. If the run has no ID,
// a new UUID is generated.
func (s *SQLiteStore) RecordScanRun(ctx context.Context, run model.ScanRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO scan_runs (
			id, started_at, finished_at, addresses, messages, extracted, added, failed
		) VALUES (
			:id, :started_at, :finished_at, :addresses, :messages, :extracted, :added, :failed
		)`,
		scanRunRow{
			ID:         run.ID,
			StartedAt:  run.StartedAt.UTC(),
			FinishedAt: run.FinishedAt.UTC(),
			Addresses:  run.Addresses,
			Messages:   run.Messages,
			Extracted:  run.Extracted,
			Added:      run.Added,
			Failed:     run.Failed,
		},
	)
	if err != nil {
		return fmt.Errorf("recording scan run %s: %w", run.ID, err)
	}
	return nil
}

// ListScanRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListScanRuns(ctx context.Context, limit int) ([]model.ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []scanRunRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM scan_runs ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying scan runs: %w", err)
	}

	runs := make([]model.ScanRun, 0, len(rows))
	for _, r := range rows {
		runs = append(runs, model.ScanRun{
			ID:         r.ID,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Addresses:  r.Addresses,
			Messages:   r.Messages,
			Extracted:  r.Extracted,
			Added:      r.Added,
			Failed:     r.Failed,
		})
	}
	return runs, nil
}
