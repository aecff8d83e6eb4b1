package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/config"
	"github.com/mauv0809/ballcrusher-stats/internal/database"
	"github.com/mauv0809/ballcrusher-stats/internal/detail"
	"github.com/mauv0809/ballcrusher-stats/internal/extrabox"
	server "github.com/mauv0809/ballcrusher-stats/internal/http"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier/slack"
	"github.com/mauv0809/ballcrusher-stats/internal/pubsub"
	"github.com/mauv0809/ballcrusher-stats/internal/session"
	"github.com/mauv0809/ballcrusher-stats/internal/source"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	log.SetLevel(cfg.LogLevel)

	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
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
	usageStore := metrics.NewUsageStore(db)
	boxes := extrabox.New(db)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)

	var ps pubsub.PubSubClient
	if cfg.ProjectID == "" {
		log.Info("No GCP project configured, dataset events are only logged")
		ps = pubsub.NewNoop()
	} else {
		ps, err = pubsub.New(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize pubsub: %s", err)
		}
	}
	defer ps.Close()

	var fetcher source.Fetcher
	if cfg.Data.URL != "" {
		fetcher = source.NewHTTPFetcher(cfg.Data.URL)
	} else {
		fetcher = source.NewFileFetcher(cfg.Data.File)
	}

	scheduler := &detail.Async{}
	sess := session.New(fetcher, notifier, metricsSvc, ps, scheduler)

	// Warm the cache in the background; requests join the same fetch.
	go func() {
		if _, err := sess.Load(context.Background()); err != nil {
			log.Error("Initial dataset load failed", "error", err)
		}
	}()

	s := server.NewServer(
		sess,
		boxes,
		usageStore,
		metricsSvc,
		metricsHandler,
		cfg,
		notifier,
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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
		scheduler.Wait()
	}

	log.Info("Server process shutting down")
}
