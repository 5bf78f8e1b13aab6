package models

import (
	"time"
)

// IngestRun records the outcome of one webhook fetch cycle.
type IngestRun struct {
	ID           string    `json:"id"`
	Trigger      string    `json:"trigger"`
	Status       string    `json:"status"`
	ErrorKind    *string   `json:"error_kind,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	Appointments int       `json:"appointments"`
	Expenses     int       `json:"expenses"`
	HasInsights  bool      `json:"has_insights"`
	Skipped      int       `json:"skipped"`
	Placeholders int       `json:"placeholders"`
	Applied      bool      `json:"applied"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// IngestRun status constants
const (
	IngestStatusSuccess = "success"
	IngestStatusError   = "error"
	IngestStatusStale   = "stale"
)

// IngestRun trigger constants
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerRefresh  = "refresh"
	TriggerStartup  = "startup"
)
