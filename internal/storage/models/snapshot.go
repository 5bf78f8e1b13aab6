package models

import "time"

// DataSnapshot is the persisted copy of the last successful ingest, used to
// warm-start the in-memory state after a restart.
type DataSnapshot struct {
	Appointments []Appointment
	Expenses     []Expense
	Insights     *AIInsightsSummary
	UpdatedAt    time.Time
}
