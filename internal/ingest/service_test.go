package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/barber-dashboard/backend/internal/state"
	"github.com/barber-dashboard/backend/internal/storage"
	"github.com/barber-dashboard/backend/internal/storage/models"
	"github.com/barber-dashboard/backend/internal/webhook"
	"github.com/barber-dashboard/backend/internal/websocket"
)

type fakeFetcher struct {
	fetch   func(ctx context.Context) (*webhook.Result, error)
	refresh func(ctx context.Context) (string, error)
}

func (f *fakeFetcher) FetchAndNormalize(ctx context.Context) (*webhook.Result, error) {
	return f.fetch(ctx)
}

func (f *fakeFetcher) TriggerRefresh(ctx context.Context) (string, error) {
	return f.refresh(ctx)
}

type recordingNotifier struct {
	mu       sync.Mutex
	updates  []websocket.DashboardUpdatedPayload
	errors   []string
	refreshs []time.Time
}

func (n *recordingNotifier) BroadcastDashboardUpdated(p websocket.DashboardUpdatedPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, p)
}

func (n *recordingNotifier) BroadcastIngestError(trigger, kind string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, kind)
}

func (n *recordingNotifier) BroadcastRefreshTriggered(syncAt time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refreshs = append(n.refreshs, syncAt)
}

func newTestDB(t *testing.T) *storage.DB {
	db, err := storage.NewDB(filepath.Join(t.TempDir(), "ingest.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db, nil))
	return db
}

func resultWith(ids ...string) *webhook.Result {
	res := &webhook.Result{Appointments: []models.Appointment{}, Expenses: []models.Expense{}}
	for _, id := range ids {
		res.Appointments = append(res.Appointments, models.Appointment{
			ID: id, ClientName: "Client " + id, PhoneNumber: "(555) 123-4567", HaircutType: "Fade",
			Date: time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC), Status: models.StatusCompleted, Price: 30,
		})
	}
	return res
}

func TestSync_Success(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	store := state.NewStore(time.UTC)
	notifier := &recordingNotifier{}
	snapshots := storage.NewSnapshotRepository(db)
	runs := storage.NewIngestRunRepository(db)

	fetcher := &fakeFetcher{fetch: func(context.Context) (*webhook.Result, error) {
		res := resultWith("a", "b")
		res.Skipped = 1
		return res, nil
	}}
	svc := NewService(fetcher, store, Deps{Snapshots: snapshots, Runs: runs, Notifier: notifier}, zaptest.NewLogger(t))

	run, err := svc.Sync(ctx, models.TriggerManual)
	require.NoError(t, err)
	assert.Equal(t, models.IngestStatusSuccess, run.Status)
	assert.True(t, run.Applied)
	assert.Equal(t, 2, run.Appointments)
	assert.Equal(t, 1, run.Skipped)

	snap := store.Snapshot()
	assert.True(t, snap.Live)
	assert.Len(t, snap.Appointments, 2)

	persisted, err := snapshots.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Len(t, persisted.Appointments, 2)

	history, err := runs.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TriggerManual, history[0].Trigger)

	require.Len(t, notifier.updates, 1)
	assert.Equal(t, snap.Version, notifier.updates[0].Version)
	assert.Equal(t, 60.0, notifier.updates[0].Stats.Revenue)
	assert.True(t, notifier.updates[0].Stats.SpendingIsFallback)
}

func TestSync_FailureKeepsData(t *testing.T) {
	store := state.NewStore(time.UTC)
	notifier := &recordingNotifier{}
	fail := false
	fetcher := &fakeFetcher{fetch: func(context.Context) (*webhook.Result, error) {
		if fail {
			return nil, &webhook.FetchError{Kind: webhook.KindShape, Err: errors.New("expected JSON array")}
		}
		return resultWith("a"), nil
	}}
	svc := NewService(fetcher, store, Deps{Notifier: notifier}, zaptest.NewLogger(t))

	_, err := svc.Sync(context.Background(), models.TriggerSchedule)
	require.NoError(t, err)

	fail = true
	run, err := svc.Sync(context.Background(), models.TriggerSchedule)
	assert.ErrorIs(t, err, webhook.ErrShape)
	assert.Equal(t, models.IngestStatusError, run.Status)
	require.NotNil(t, run.ErrorKind)
	assert.Equal(t, webhook.KindShape, *run.ErrorKind)

	snap := store.Snapshot()
	assert.False(t, snap.Live)
	assert.Len(t, snap.Appointments, 1)
	assert.Equal(t, []string{webhook.KindShape}, notifier.errors)
}

func TestSync_StaleResultDiscarded(t *testing.T) {
	store := state.NewStore(time.UTC)
	var svc *Service
	var calls int32

	fetcher := &fakeFetcher{fetch: func(ctx context.Context) (*webhook.Result, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			// A newer sync starts and finishes while this one is in flight.
			_, err := svc.Sync(ctx, models.TriggerManual)
			require.NoError(t, err)
			return resultWith("old"), nil
		}
		return resultWith("new"), nil
	}}
	svc = NewService(fetcher, store, Deps{}, zaptest.NewLogger(t))

	run, err := svc.Sync(context.Background(), models.TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, models.IngestStatusStale, run.Status)
	assert.False(t, run.Applied)

	snap := store.Snapshot()
	require.Len(t, snap.Appointments, 1)
	assert.Equal(t, "new", snap.Appointments[0].ID)
}

func TestRefresh(t *testing.T) {
	notifier := &recordingNotifier{}
	fetcher := &fakeFetcher{refresh: func(context.Context) (string, error) {
		return `{"message":"Workflow was started"}`, nil
	}}
	svc := NewService(fetcher, state.NewStore(time.UTC), Deps{Notifier: notifier}, zaptest.NewLogger(t))

	syncAt := time.Now().Add(3 * time.Second)
	require.NoError(t, svc.Refresh(context.Background(), syncAt))
	assert.Equal(t, []time.Time{syncAt}, notifier.refreshs)

	fetcher.refresh = func(context.Context) (string, error) {
		return "", &webhook.FetchError{Kind: webhook.KindConfig}
	}
	err := svc.Refresh(context.Background(), syncAt)
	assert.ErrorIs(t, err, webhook.ErrConfig)
	assert.Len(t, notifier.refreshs, 1)
}

func TestScheduler_StartupSyncAndRefresh(t *testing.T) {
	var dataCalls, refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data":
			atomic.AddInt32(&dataCalls, 1)
			_, _ = w.Write([]byte(`[{"clientName":"A","date":"7/1/2025","time":"10:00 AM","status":true,"price":30}]`))
		case "/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	log := zaptest.NewLogger(t)
	client := webhook.NewClient(webhook.Options{URL: srv.URL + "/data", RefreshURL: srv.URL + "/refresh", Location: time.UTC}, log)
	store := state.NewStore(time.UTC)
	svc := NewService(client, store, Deps{}, log)

	sched := NewScheduler(svc, time.Hour, 20*time.Millisecond, log)
	assert.Nil(t, sched.NextRun())
	require.NoError(t, sched.Start())

	assert.Eventually(t, func() bool { return store.Snapshot().Live }, 2*time.Second, 10*time.Millisecond)
	next := sched.NextRun()
	require.NotNil(t, next)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *next, time.Minute)

	syncAt, err := sched.TriggerRefresh(context.Background())
	require.NoError(t, err)
	assert.False(t, syncAt.IsZero())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&dataCalls) >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&refreshCalls))

	sched.Stop()
}

func TestScheduler_RefreshNotConfigured(t *testing.T) {
	log := zaptest.NewLogger(t)
	client := webhook.NewClient(webhook.Options{}, log)
	sched := NewScheduler(NewService(client, state.NewStore(time.UTC), Deps{}, log), time.Hour, time.Millisecond, log)

	_, err := sched.TriggerRefresh(context.Background())
	assert.ErrorIs(t, err, webhook.ErrConfig)
	sched.Stop()
}
