// Package ingest runs webhook fetch cycles and schedules them.
package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/dashboard"
	"github.com/barber-dashboard/backend/internal/state"
	"github.com/barber-dashboard/backend/internal/storage/models"
	"github.com/barber-dashboard/backend/internal/webhook"
	"github.com/barber-dashboard/backend/internal/websocket"
)

// runHistoryLimit bounds the ingest_runs table.
const runHistoryLimit = 500

// Fetcher is the webhook client used by the service.
type Fetcher interface {
	FetchAndNormalize(ctx context.Context) (*webhook.Result, error)
	TriggerRefresh(ctx context.Context) (string, error)
}

// Notifier receives ingest events.
type Notifier interface {
	BroadcastDashboardUpdated(payload websocket.DashboardUpdatedPayload)
	BroadcastIngestError(trigger, kind string, err error)
	BroadcastRefreshTriggered(syncAt time.Time)
}

// SnapshotStore persists the last-known-good data.
type SnapshotStore interface {
	Replace(ctx context.Context, snap models.DataSnapshot) error
}

// RunStore records ingest history.
type RunStore interface {
	Create(ctx context.Context, run *models.IngestRun) error
	Prune(ctx context.Context, keep int) (int64, error)
}

// CalculatorSource supplies the stats calculator for event payloads.
type CalculatorSource interface {
	Calculator(ctx context.Context) dashboard.Calculator
}

// Deps groups the optional collaborators of a Service. Nil members are
// skipped.
type Deps struct {
	Snapshots   SnapshotStore
	Runs        RunStore
	Notifier    Notifier
	Calculators CalculatorSource
}

// Service runs one fetch-apply-persist cycle at a time per call.
type Service struct {
	fetcher Fetcher
	store   *state.Store
	deps    Deps
	log     *zap.Logger
	now     func() time.Time
}

// NewService creates a new ingest service.
func NewService(fetcher Fetcher, store *state.Store, deps Deps, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		store:   store,
		deps:    deps,
		log:     log.Named("ingest"),
		now:     time.Now,
	}
}

// Sync fetches the webhook and applies the result to the state. The
// returned error is the fetch error, if any. A stale result is not an
// error; the run reports it with IngestStatusStale.
func (s *Service) Sync(ctx context.Context, trigger string) (*models.IngestRun, error) {
	run := &models.IngestRun{Trigger: trigger, StartedAt: s.now().UTC()}
	ticket := s.store.Begin()

	res, err := s.fetcher.FetchAndNormalize(ctx)
	run.Applied = s.store.ApplyIngestionResult(ticket, res, err)
	run.FinishedAt = s.now().UTC()

	switch {
	case err != nil:
		kind := webhook.KindOf(err)
		msg := err.Error()
		run.Status = models.IngestStatusError
		run.ErrorKind = &kind
		run.ErrorMessage = &msg
		s.log.Warn("webhook fetch failed",
			zap.String("trigger", trigger), zap.String("kind", kind), zap.Error(err))
		if run.Applied && s.deps.Notifier != nil {
			s.deps.Notifier.BroadcastIngestError(trigger, kind, err)
		}

	default:
		run.Appointments = len(res.Appointments)
		run.Expenses = len(res.Expenses)
		run.HasInsights = res.Insights != nil
		run.Skipped = res.Skipped
		run.Placeholders = res.Placeholders

		if !run.Applied {
			run.Status = models.IngestStatusStale
			s.log.Info("discarding stale webhook result", zap.String("trigger", trigger), zap.Uint64("ticket", ticket))
			break
		}

		run.Status = models.IngestStatusSuccess
		s.afterApply(ctx, trigger, res)
	}

	s.record(ctx, run)
	return run, err
}

// afterApply persists and announces freshly applied data.
func (s *Service) afterApply(ctx context.Context, trigger string, res *webhook.Result) {
	snap := s.store.Snapshot()

	report := dashboard.Validate(snap.Appointments)
	if !report.Valid {
		s.log.Warn("appointment data has issues",
			zap.Int("issues", len(report.Issues)),
			zap.Int("phone_format_issues", report.Summary.PhoneFormatIssues),
			zap.Int("date_issues", report.Summary.DateIssues))
	}
	s.log.Info("webhook data applied",
		zap.String("trigger", trigger),
		zap.Uint64("version", snap.Version),
		zap.Int("appointments", len(snap.Appointments)),
		zap.Int("expenses", len(snap.Expenses)),
		zap.Bool("insights", snap.Insights != nil),
		zap.Int("skipped", res.Skipped),
		zap.Int("placeholders", res.Placeholders),
		zap.Int("date_fallbacks", res.DateFallbacks))

	if s.deps.Snapshots != nil {
		err := s.deps.Snapshots.Replace(ctx, models.DataSnapshot{
			Appointments: snap.Appointments,
			Expenses:     snap.Expenses,
			Insights:     snap.Insights,
			UpdatedAt:    *snap.LastUpdated,
		})
		if err != nil {
			s.log.Error("persisting snapshot", zap.Error(err))
		}
	}

	if s.deps.Notifier != nil {
		calc := dashboard.Calculator{SpendingFallback: dashboard.DefaultSpendingFallback}
		if s.deps.Calculators != nil {
			calc = s.deps.Calculators.Calculator(ctx)
		}
		s.deps.Notifier.BroadcastDashboardUpdated(websocket.DashboardUpdatedPayload{
			Version:      snap.Version,
			Trigger:      trigger,
			Appointments: len(snap.Appointments),
			Expenses:     len(snap.Expenses),
			HasInsights:  snap.Insights != nil,
			Stats:        calc.Compute(snap.Appointments, snap.Expenses, s.now()),
			UpdatedAt:    *snap.LastUpdated,
		})
	}
}

func (s *Service) record(ctx context.Context, run *models.IngestRun) {
	if s.deps.Runs == nil {
		return
	}
	if err := s.deps.Runs.Create(ctx, run); err != nil {
		s.log.Error("recording ingest run", zap.Error(err))
		return
	}
	if _, err := s.deps.Runs.Prune(ctx, runHistoryLimit); err != nil {
		s.log.Warn("pruning ingest runs", zap.Error(err))
	}
}

// Refresh asks the upstream workflow to regenerate its data. It does not
// wait for the workflow; callers schedule a follow-up Sync.
func (s *Service) Refresh(ctx context.Context, syncAt time.Time) error {
	body, err := s.fetcher.TriggerRefresh(ctx)
	if err != nil {
		s.log.Warn("refresh webhook failed", zap.String("kind", webhook.KindOf(err)), zap.Error(err))
		return err
	}

	s.log.Info("refresh webhook accepted", zap.String("response", truncate(body, 512)), zap.Time("sync_at", syncAt))
	if s.deps.Notifier != nil {
		s.deps.Notifier.BroadcastRefreshTriggered(syncAt)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
