package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/timerkit/countdown-api/internal/config"
	"github.com/timerkit/countdown-api/internal/handler"
	analyticsHandler "github.com/timerkit/countdown-api/internal/handler/analytics"
	"github.com/timerkit/countdown-api/internal/handler/health"
	publicHandler "github.com/timerkit/countdown-api/internal/handler/public"
	schedulerHandler "github.com/timerkit/countdown-api/internal/handler/scheduler"
	timerHandler "github.com/timerkit/countdown-api/internal/handler/timer"
	"github.com/timerkit/countdown-api/internal/middleware"
	"github.com/timerkit/countdown-api/internal/repository/postgres"
	"github.com/timerkit/countdown-api/internal/router"
	timerService "github.com/timerkit/countdown-api/internal/service/timer"
	"github.com/timerkit/countdown-api/internal/worker"
	"github.com/timerkit/countdown-api/pkg/clock"
	"github.com/timerkit/countdown-api/pkg/logger"
	"github.com/timerkit/countdown-api/pkg/messaging/redis"
	"github.com/timerkit/countdown-api/pkg/metrics"
	pkgworker "github.com/timerkit/countdown-api/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("countdown")
	clk := clock.New()

	// Initialize repositories and services
	timerRepo := postgres.NewTimerRepository(db)
	timerSvc := timerService.NewService(timerRepo, clk, appLogger, cfg.Public.CacheTTL())

	// Initialize Redis message broker for status-change events
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	// Impression counting stays off the request path
	tracker := pkgworker.NewImpressionTracker(timerRepo, appLogger, appMetrics, cfg.Public.ImpressionQueueSize)

	// Reconciliation sweep keeps fixed-timer statuses in step with time
	reconciler := worker.NewReconciler(timerRepo, broker, clk, worker.ReconcilerConfig{
		Interval:   cfg.Scheduler.Interval(),
		RunOnStart: cfg.Scheduler.RunOnStart,
	}, appLogger, appMetrics)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Session.Secret)

	// Initialize handlers
	h := handler.NewHandler()
	timerH := timerHandler.NewHandler(timerSvc)
	analyticsH := analyticsHandler.NewHandler(timerSvc)
	schedulerH := schedulerHandler.NewHandler(reconciler)
	publicH := publicHandler.NewHandler(timerSvc, tracker, clk)
	healthH := health.NewHandler(db)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		timerH,
		analyticsH,
		schedulerH,
		publicH,
		healthH,
		h,
		router.RouterConfig{
			RateLimit:     rate.Limit(cfg.Public.RateLimitRPS),
			RateBurst:     cfg.Public.RateLimitBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "countdown_api",
			PublicMaxAge:  cfg.Public.CacheMaxAgeSeconds,
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tracker.Start(ctx)
	go reconciler.Start(ctx)

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	reconciler.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
