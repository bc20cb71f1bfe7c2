package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nmdr-club/courtsync/internal/config"
	"github.com/nmdr-club/courtsync/internal/connectivity"
	"github.com/nmdr-club/courtsync/internal/database"
	"github.com/nmdr-club/courtsync/internal/game"
	server "github.com/nmdr-club/courtsync/internal/http"
	"github.com/nmdr-club/courtsync/internal/kv"
	"github.com/nmdr-club/courtsync/internal/localstore"
	"github.com/nmdr-club/courtsync/internal/metrics"
	"github.com/nmdr-club/courtsync/internal/notifier/slack"
	"github.com/nmdr-club/courtsync/internal/pubsub"
	"github.com/nmdr-club/courtsync/internal/queue"
	"github.com/nmdr-club/courtsync/internal/remote"
	"github.com/nmdr-club/courtsync/internal/roster"
	"github.com/nmdr-club/courtsync/internal/settings"
	"github.com/nmdr-club/courtsync/internal/syncer"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	remoteClient := remote.NewClient(cfg.Remote.BaseURL)
	monitor := connectivity.NewMonitor(remoteClient.Ping, cfg.Remote.ProbeInterval)

	kvStore := kv.New(db)
	actionQueue := queue.New(kvStore, cfg.Sync.MaxRetries)
	localStore := localstore.New(kvStore, actionQueue, monitor.IsOnline, cfg.Sync.SnapshotTTL)
	rosterStore := roster.New(db)
	settingsStore := settings.New(kvStore)

	var events pubsub.PubSubClient
	if cfg.ProjectID != "" {
		events = pubsub.New(cfg.ProjectID)
	}

	sync := syncer.NewCoordinator(
		localStore,
		actionQueue,
		remoteClient,
		monitor,
		events,
		notifier,
		metricsSvc,
		cfg.PubSub.SubscriptionID,
		cfg.Sync.Interval,
		cfg.Sync.DebounceWindow,
	)

	appSettings, err := settingsStore.Get()
	if err != nil {
		log.Warn("Falling back to default settings", "error", err)
	}
	courtsCount := appSettings.CourtsCount
	if cfg.CourtsCount > 0 {
		courtsCount = cfg.CourtsCount
	}

	keeper := game.NewKeeper(courtsCount, sync.Save)
	if snap, err := localStore.Load(); err != nil {
		log.Error("Failed to load persisted game state", "error", err)
	} else if snap != nil {
		keeper.Restore(snap)
	}
	if players, err := rosterStore.AvailablePlayers(remote.TodayKey(time.Now())); err != nil {
		log.Error("Failed to load today's attendance", "error", err)
	} else if len(players) > 0 {
		keeper.SetAvailablePlayers(players)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	monitor.Start(ctx)
	defer monitor.Stop()
	sync.Start(ctx)
	defer sync.Stop()

	s := server.NewServer(
		keeper,
		rosterStore,
		settingsStore,
		localStore,
		sync,
		metricsSvc,
		metricsHandler,
		notifier,
		cfg,
	)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		// Create a context with a timeout for the shutdown.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt to gracefully shut down the server.
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
