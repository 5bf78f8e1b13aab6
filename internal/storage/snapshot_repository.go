package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// SnapshotRepository persists the last-known-good dashboard data.
type SnapshotRepository struct {
	BaseRepository
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Replace overwrites the stored snapshot in a single transaction.
func (r *SnapshotRepository) Replace(ctx context.Context, snap models.DataSnapshot) error {
	var insightsJSON sql.NullString
	if snap.Insights != nil {
		b, err := json.Marshal(snap.Insights)
		if err != nil {
			return fmt.Errorf("encoding insights: %w", err)
		}
		insightsJSON = sql.NullString{String: string(b), Valid: true}
	}

	updatedAt := snap.UpdatedAt.UTC()
	if snap.UpdatedAt.IsZero() {
		updatedAt = r.Now()
	}

	return r.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_appointments"); err != nil {
			return fmt.Errorf("clearing appointments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM snapshot_expenses"); err != nil {
			return fmt.Errorf("clearing expenses: %w", err)
		}

		apptStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO snapshot_appointments (
				position, id, client_name, phone_number, haircut_type, date,
				duration, price, cost, status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing appointment insert: %w", err)
		}
		defer apptStmt.Close()

		for i, a := range snap.Appointments {
			if _, err := apptStmt.ExecContext(ctx,
				i, a.ID, a.ClientName, a.PhoneNumber, a.HaircutType, a.Date.UTC(),
				a.Duration, a.Price, a.Cost, string(a.Status),
			); err != nil {
				return fmt.Errorf("inserting appointment %s: %w", a.ID, err)
			}
		}

		expStmt, err := tx.PrepareContext(ctx, "INSERT INTO snapshot_expenses (position, date, amount) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("preparing expense insert: %w", err)
		}
		defer expStmt.Close()

		for i, e := range snap.Expenses {
			if _, err := expStmt.ExecContext(ctx, i, e.Date.UTC(), e.Amount); err != nil {
				return fmt.Errorf("inserting expense: %w", err)
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO snapshot_meta (id, insights_json, updated_at) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET insights_json = excluded.insights_json, updated_at = excluded.updated_at
		`, insightsJSON, updatedAt)
		if err != nil {
			return fmt.Errorf("writing snapshot meta: %w", err)
		}

		return nil
	})
}

// Load returns the stored snapshot, or nil if none has been saved yet.
func (r *SnapshotRepository) Load(ctx context.Context) (*models.DataSnapshot, error) {
	snap := &models.DataSnapshot{}
	var insightsJSON sql.NullString

	err := r.DB().QueryRowContext(ctx, "SELECT insights_json, updated_at FROM snapshot_meta WHERE id = 1").
		Scan(&insightsJSON, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot meta: %w", err)
	}

	if insightsJSON.Valid {
		var insights models.AIInsightsSummary
		if err := json.Unmarshal([]byte(insightsJSON.String), &insights); err != nil {
			return nil, fmt.Errorf("decoding insights: %w", err)
		}
		snap.Insights = &insights
	}

	if snap.Appointments, err = r.loadAppointments(ctx); err != nil {
		return nil, err
	}
	if snap.Expenses, err = r.loadExpenses(ctx); err != nil {
		return nil, err
	}

	return snap, nil
}

func (r *SnapshotRepository) loadAppointments(ctx context.Context) ([]models.Appointment, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, client_name, phone_number, haircut_type, date, duration, price, cost, status
		FROM snapshot_appointments ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying appointments: %w", err)
	}
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		var a models.Appointment
		var status string
		if err := rows.Scan(
			&a.ID, &a.ClientName, &a.PhoneNumber, &a.HaircutType, &a.Date,
			&a.Duration, &a.Price, &a.Cost, &status,
		); err != nil {
			return nil, fmt.Errorf("scanning appointment: %w", err)
		}
		a.Status = models.AppointmentStatus(status)
		appointments = append(appointments, a)
	}

	return appointments, rows.Err()
}

func (r *SnapshotRepository) loadExpenses(ctx context.Context) ([]models.Expense, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT date, amount FROM snapshot_expenses ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("querying expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]models.Expense, 0)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.Date, &e.Amount); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}
