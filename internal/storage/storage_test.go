package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, RunMigrations(db, zaptest.NewLogger(t)))
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, RunMigrations(db, nil))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestLoadMigrations(t *testing.T) {
	all, err := loadMigrations(0)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "001_initial.sql", all[0].Name)

	newer, err := loadMigrations(all[len(all)-1].Version)
	require.NoError(t, err)
	assert.Empty(t, newer)
}

func TestSnapshotRepository_LoadEmpty(t *testing.T) {
	repo := NewSnapshotRepository(newTestDB(t))
	snap, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotRepository_ReplaceAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository(newTestDB(t))

	date := time.Date(2025, 7, 20, 14, 30, 0, 0, time.UTC)
	updated := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	first := models.DataSnapshot{
		Appointments: []models.Appointment{
			{ID: "b", ClientName: "B", PhoneNumber: "(555) 987-6543", HaircutType: "Buzz Cut", Date: date, Duration: 25, Price: 25, Cost: 5, Status: models.StatusCompleted},
			{ID: "a", ClientName: "A", PhoneNumber: "(555) 123-4567", HaircutType: "Burst Fade", Date: date.Add(time.Hour), Duration: 45, Price: 35, Cost: 8, Status: models.StatusScheduled},
		},
		Expenses: []models.Expense{{Date: date, Amount: 120.5}},
		Insights: &models.AIInsightsSummary{
			PerformanceScore: 77,
			KeyInsights:      []string{"steady"},
			PeakHours:        []string{},
			TopServices:      []models.ServiceCount{{Service: "Fade", Count: 3}},
			Recommendations:  []string{},
			Status:           "live",
		},
		UpdatedAt: updated,
	}
	require.NoError(t, repo.Replace(ctx, first))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Appointments, 2)
	assert.Equal(t, "b", got.Appointments[0].ID, "order is preserved")
	assert.Equal(t, models.StatusCompleted, got.Appointments[0].Status)
	assert.True(t, date.Equal(got.Appointments[0].Date))
	assert.Equal(t, 45, got.Appointments[1].Duration)
	require.Len(t, got.Expenses, 1)
	assert.Equal(t, 120.5, got.Expenses[0].Amount)
	require.NotNil(t, got.Insights)
	assert.Equal(t, 77, got.Insights.PerformanceScore)
	assert.Equal(t, []models.ServiceCount{{Service: "Fade", Count: 3}}, got.Insights.TopServices)
	assert.True(t, updated.Equal(got.UpdatedAt))

	// A second replace drops everything from the first.
	require.NoError(t, repo.Replace(ctx, models.DataSnapshot{
		Appointments: []models.Appointment{{ID: "c", ClientName: "C", Date: date, Status: models.StatusScheduled}},
		UpdatedAt:    updated.Add(time.Hour),
	}))

	got, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Appointments, 1)
	assert.Equal(t, "c", got.Appointments[0].ID)
	assert.Empty(t, got.Expenses)
	assert.NotNil(t, got.Expenses)
	assert.Nil(t, got.Insights)
}

func TestIngestRunRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewIngestRunRepository(newTestDB(t))

	base := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	kind, msg := "transport", "webhook returned status 500"
	runs := []*models.IngestRun{
		{Trigger: models.TriggerStartup, Status: models.IngestStatusSuccess, Appointments: 10, Expenses: 2, HasInsights: true, Applied: true, StartedAt: base, FinishedAt: base.Add(time.Second)},
		{Trigger: models.TriggerSchedule, Status: models.IngestStatusError, ErrorKind: &kind, ErrorMessage: &msg, Applied: true, StartedAt: base.Add(5 * time.Minute)},
		{Trigger: models.TriggerManual, Status: models.IngestStatusStale, Skipped: 1, Placeholders: 2, StartedAt: base.Add(10 * time.Minute)},
	}
	for _, run := range runs {
		require.NoError(t, repo.Create(ctx, run))
		assert.NotEmpty(t, run.ID)
	}

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, models.TriggerManual, got[0].Trigger)
	assert.Equal(t, 2, got[0].Placeholders)
	assert.False(t, got[0].Applied)
	assert.Nil(t, got[0].ErrorKind)

	require.NotNil(t, got[1].ErrorKind)
	assert.Equal(t, "transport", *got[1].ErrorKind)
	assert.Equal(t, msg, *got[1].ErrorMessage)

	assert.True(t, got[2].HasInsights)
	assert.Equal(t, 10, got[2].Appointments)
	assert.True(t, base.Equal(got[2].StartedAt))

	removed, err := repo.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	got, err = repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.TriggerManual, got[0].Trigger)
}

func TestInventoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInventoryRepository(newTestDB(t))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "Hair Clippers", items[0].Name)
	assert.Equal(t, "Towels", items[3].Name)

	shampoo, err := repo.GetByID(ctx, "2")
	require.NoError(t, err)
	require.NotNil(t, shampoo)
	assert.Equal(t, "Shampoo", shampoo.Name)
	assert.Equal(t, 5, shampoo.RestockThreshold)
	assert.False(t, shampoo.AutoReorder)
	assert.Equal(t, 0.4, shampoo.UsageRate)
	assert.True(t, time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC).Equal(shampoo.PurchaseDate))

	shampoo.RestockThreshold = 1
	shampoo.AutoReorder = true
	shampoo.Quantity = 10
	require.NoError(t, repo.Update(ctx, shampoo))

	shampoo, err = repo.GetByID(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, 1, shampoo.RestockThreshold)
	assert.True(t, shampoo.AutoReorder)
	assert.Equal(t, 10, shampoo.Quantity)

	missing, err := repo.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.Update(ctx, &models.InventoryItem{ID: "nope"}))
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(newTestDB(t))

	_, ok, err := repo.Get(ctx, SettingSpendingFallback)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, SettingSpendingFallback, "500"))
	require.NoError(t, repo.Set(ctx, SettingSpendingFallback, "650.5"))

	value, ok, err := repo.Get(ctx, SettingSpendingFallback)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "650.5", value)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{SettingSpendingFallback: "650.5"}, all)
}
