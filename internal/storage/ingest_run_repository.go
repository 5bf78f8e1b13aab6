package storage

import (
	"context"
	"fmt"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// IngestRunRepository records the history of webhook fetch cycles.
type IngestRunRepository struct {
	BaseRepository
}

// NewIngestRunRepository creates a new ingest run repository.
func NewIngestRunRepository(db *DB) *IngestRunRepository {
	return &IngestRunRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a run, assigning its ID.
func (r *IngestRunRepository) Create(ctx context.Context, run *models.IngestRun) error {
	run.ID = GenerateID()
	if run.StartedAt.IsZero() {
		run.StartedAt = r.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = r.Now()
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO ingest_runs (
			id, trigger_source, status, error_kind, error_message, appointments, expenses,
			has_insights, skipped, placeholders, applied, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, run.Trigger, run.Status, run.ErrorKind, run.ErrorMessage,
		run.Appointments, run.Expenses, run.HasInsights, run.Skipped, run.Placeholders,
		run.Applied, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting ingest run: %w", err)
	}

	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *IngestRunRepository) ListRecent(ctx context.Context, limit int) ([]models.IngestRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, trigger_source, status, error_kind, error_message, appointments, expenses,
			   has_insights, skipped, placeholders, applied, started_at, finished_at
		FROM ingest_runs ORDER BY started_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.IngestRun, 0)
	for rows.Next() {
		var run models.IngestRun
		if err := rows.Scan(
			&run.ID, &run.Trigger, &run.Status, &run.ErrorKind, &run.ErrorMessage,
			&run.Appointments, &run.Expenses, &run.HasInsights, &run.Skipped, &run.Placeholders,
			&run.Applied, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ingest run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Prune deletes all but the newest keep runs.
func (r *IngestRunRepository) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := r.DB().ExecContext(ctx, `
		DELETE FROM ingest_runs WHERE rowid NOT IN (
			SELECT rowid FROM ingest_runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning ingest runs: %w", err)
	}
	return res.RowsAffected()
}
