// Package main is the entry point for the barber dashboard server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/barber-dashboard/backend/internal/api"
	"github.com/barber-dashboard/backend/internal/cache"
	"github.com/barber-dashboard/backend/internal/config"
	"github.com/barber-dashboard/backend/internal/ingest"
	"github.com/barber-dashboard/backend/internal/logger"
	"github.com/barber-dashboard/backend/internal/settings"
	"github.com/barber-dashboard/backend/internal/state"
	"github.com/barber-dashboard/backend/internal/storage"
	"github.com/barber-dashboard/backend/internal/webhook"
	"github.com/barber-dashboard/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	addr := flag.String("addr", ":8099", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	staticDir := flag.String("static", "./static", "Directory for static frontend files")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	defer log.Sync()

	if err := run(cfg, *addr, *dataDir, *staticDir, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, addr, dataDir, staticDir string, log *zap.Logger) error {
	log.Info("starting barber dashboard",
		zap.String("version", version),
		zap.Bool("webhook_configured", cfg.WebhookConfigured()),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.String("location", cfg.Location.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDB(filepath.Join(dataDir, "barber-dashboard.db"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db, log); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	snapshots := storage.NewSnapshotRepository(db)
	runs := storage.NewIngestRunRepository(db)
	settingsSvc := settings.NewService(storage.NewSettingsRepository(db), cfg.SpendingFallback, log.Named("settings"))

	store := state.NewStore(cfg.Location)
	if snap, err := snapshots.Load(ctx); err != nil {
		log.Warn("loading persisted snapshot, starting from fallback data", zap.Error(err))
	} else if snap != nil {
		store.Restore(snap.Appointments, snap.Expenses, snap.Insights, snap.UpdatedAt)
		log.Info("restored persisted snapshot",
			zap.Int("appointments", len(snap.Appointments)),
			zap.Time("updated_at", snap.UpdatedAt))
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := websocket.NewHub(log)
	go hub.Run(hubCtx)

	var respCache cache.Cache = cache.NewNoop()
	if cfg.RedisAddr != "" {
		rc := cache.NewRedis(cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}, log.Named("cache"))
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, stats caching disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			rc.Close()
		} else {
			log.Info("stats caching enabled", zap.String("addr", cfg.RedisAddr))
			respCache = rc
			defer rc.Close()
		}
	}

	client := webhook.NewClient(webhook.Options{
		URL:        cfg.WebhookURL,
		RefreshURL: cfg.RefreshWebhookURL,
		Location:   cfg.Location,
		Timeout:    cfg.FetchTimeout,
	}, log.Named("webhook"))

	ingestSvc := ingest.NewService(client, store, ingest.Deps{
		Snapshots:   snapshots,
		Runs:        runs,
		Notifier:    websocket.NewEventBroadcaster(hub, log),
		Calculators: settingsSvc,
	}, log)

	scheduler := ingest.NewScheduler(ingestSvc, cfg.PollInterval, cfg.RefreshDelay, log)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}

	router := api.NewRouter(api.Services{
		DB:        db,
		State:     store,
		Hub:       hub,
		Syncer:    scheduler,
		Settings:  settingsSvc,
		Runs:      runs,
		Inventory: storage.NewInventoryRepository(db),
		Cache:     respCache,
		CacheTTL:  cfg.CacheTTL,
		Location:  cfg.Location,
	}, staticDir, log)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down server")
	case err := <-serverErr:
		scheduler.Stop()
		return fmt.Errorf("serving http: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	scheduler.Stop()
	stopHub()

	log.Info("server stopped")
	return nil
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
