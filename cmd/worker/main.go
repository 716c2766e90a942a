package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/timerkit/countdown-api/internal/repository/postgres"
	"github.com/timerkit/countdown-api/internal/worker"
	"github.com/timerkit/countdown-api/pkg/clock"
	"github.com/timerkit/countdown-api/pkg/logger"
	"github.com/timerkit/countdown-api/pkg/messaging"
	"github.com/timerkit/countdown-api/pkg/messaging/redis"
	"github.com/timerkit/countdown-api/pkg/metrics"
)

// workerConfig is read from the environment so the sweep worker can run
// as a standalone deployment next to the API.
type workerConfig struct {
	DatabaseURL          string `envconfig:"DATABASE_URL" required:"true"`
	RedisURL             string `envconfig:"REDIS_URL"`
	SweepIntervalMinutes int    `envconfig:"SWEEP_INTERVAL_MINUTES" default:"5"`
	SweepRunOnStart      bool   `envconfig:"SWEEP_RUN_ON_START" default:"true"`
	HealthPort           int    `envconfig:"HEALTH_PORT" default:"8081"`
}

func setupHealthCheck(port int, logger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			logger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	// Load config from the environment
	var cfg workerConfig
	if err := envconfig.Process("countdown", &cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	// Initialize logger
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger := &logger.Logger{ZL: log.Logger}

	// Initialize database
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.ZL.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Redis is optional for the worker; without it status transitions
	// are still persisted, just not announced.
	var broker messaging.Broker
	if cfg.RedisURL != "" {
		broker, err = redis.NewRedisBroker(redis.Config{
			URL:          cfg.RedisURL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Redis broker")
		}
		defer broker.Close()
	}

	timerRepo := postgres.NewTimerRepository(db)

	reconciler := worker.NewReconciler(
		timerRepo,
		broker,
		clock.New(),
		worker.ReconcilerConfig{
			Interval:   time.Duration(cfg.SweepIntervalMinutes) * time.Minute,
			RunOnStart: cfg.SweepRunOnStart,
		},
		logger,
		metrics.NewMetrics("countdown_worker"),
	)

	// Setup health check endpoints
	setupHealthCheck(cfg.HealthPort, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.ZL.Info().Msg("Shutting down...")
		cancel()
	}()

	reconciler.Start(ctx)
}
