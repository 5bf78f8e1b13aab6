// Package state holds the last-known-good dashboard data and the live
// connection status behind a single update entry point.
package state

import (
	"sync"
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
	"github.com/barber-dashboard/backend/internal/webhook"
)

// Snapshot is an immutable copy of the application state.
type Snapshot struct {
	// Version increments every time the data collections are replaced.
	Version      uint64
	Appointments []models.Appointment
	Expenses     []models.Expense
	Insights     *models.AIInsightsSummary

	// Live is true while the latest applied fetch succeeded.
	Live bool
	// Configured is false after a fetch failed for lack of a webhook URL.
	Configured    bool
	LastError     string
	LastErrorKind string
	// LastUpdated is the time of the last successful fetch, nil before one.
	LastUpdated *time.Time
	// FromFallback is true until real data has been loaded.
	FromFallback bool
}

// Store is the application state. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	issued  uint64
	applied uint64
	now     func() time.Time
	snap    Snapshot
}

// NewStore creates a store seeded with the built-in fallback appointments.
func NewStore(loc *time.Location) *Store {
	return &Store{
		now: time.Now,
		snap: Snapshot{
			Appointments: FallbackAppointments(loc),
			Expenses:     []models.Expense{},
			Configured:   true,
			FromFallback: true,
		},
	}
}

// Restore replaces the fallback data with a persisted snapshot. It does not
// mark the state live.
func (s *Store) Restore(appointments []models.Appointment, expenses []models.Expense, insights *models.AIInsightsSummary, updatedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap.Version++
	s.snap.Appointments = cloneAppointments(appointments)
	s.snap.Expenses = cloneExpenses(expenses)
	s.snap.Insights = insights.Clone()
	s.snap.FromFallback = false
	if !updatedAt.IsZero() {
		t := updatedAt
		s.snap.LastUpdated = &t
	}
}

// Begin issues a ticket for a fetch about to start. Tickets increase
// monotonically.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// ApplyIngestionResult applies the outcome of the fetch holding ticket. It
// returns false, changing nothing, when a fetch with a newer ticket has
// already been applied.
//
// On success the collections are replaced wholesale. On failure the data is
// kept, Live is cleared and the error recorded.
func (s *Store) ApplyIngestionResult(ticket uint64, res *webhook.Result, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket <= s.applied {
		return false
	}
	s.applied = ticket

	if err != nil || res == nil {
		kind := webhook.KindOf(err)
		msg := "no result"
		if err != nil {
			msg = err.Error()
		}
		s.snap.Live = false
		s.snap.LastError = msg
		s.snap.LastErrorKind = kind
		s.snap.Configured = kind != webhook.KindConfig
		return true
	}

	now := s.now()
	s.snap.Version++
	s.snap.Appointments = cloneAppointments(res.Appointments)
	s.snap.Expenses = cloneExpenses(res.Expenses)
	s.snap.Insights = res.Insights.Clone()
	s.snap.Live = true
	s.snap.Configured = true
	s.snap.LastError = ""
	s.snap.LastErrorKind = ""
	s.snap.LastUpdated = &now
	s.snap.FromFallback = false
	return true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := s.snap
	out.Appointments = cloneAppointments(s.snap.Appointments)
	out.Expenses = cloneExpenses(s.snap.Expenses)
	out.Insights = s.snap.Insights.Clone()
	if s.snap.LastUpdated != nil {
		t := *s.snap.LastUpdated
		out.LastUpdated = &t
	}
	return out
}

func cloneAppointments(in []models.Appointment) []models.Appointment {
	out := make([]models.Appointment, len(in))
	copy(out, in)
	return out
}

func cloneExpenses(in []models.Expense) []models.Expense {
	out := make([]models.Expense, len(in))
	copy(out, in)
	return out
}
