package main // Entry point package

import (
	"context"
	"errors"
	"log" // Bootstrap logging before logrus is configured
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/fyyur/internal/clock"
	"github.com/iliyamo/fyyur/internal/config" // Internal config loader
	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/handler"
	"github.com/iliyamo/fyyur/internal/logging"
	"github.com/iliyamo/fyyur/internal/middleware"
	"github.com/iliyamo/fyyur/internal/queue"
	"github.com/iliyamo/fyyur/internal/repository"
	"github.com/iliyamo/fyyur/internal/router" // Internal router setup
	"github.com/iliyamo/fyyur/internal/service"
	"github.com/iliyamo/fyyur/internal/view"
)

func main() {
	cfg := config.Load() // Load environment config

	logger, logCloser, err := logging.New(logging.Options{Env: cfg.Env, Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.MigrateOnStart {
		dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err := database.Migrate(dsn, database.Up, 0); err != nil {
			logger.WithError(err).Fatal("apply migrations")
		}
		logger.Info("migrations applied")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.WithError(err).Fatal("open database")
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is disabled or unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	publisher := service.NewPublisher(cfg.AMQPURL, logger)
	if closer, ok := publisher.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	if cfg.ConsumerEnabled && cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartActivityConsumer(ctx, cfg.AMQPURL, cfg.ActivityLogDir, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(err).Error("activity consumer stopped")
			}
		}()
	}

	renderer, err := view.New()
	if err != nil {
		logger.WithError(err).Fatal("parse templates")
	}

	h := handler.New(
		repository.NewVenueRepo(db),
		repository.NewArtistRepo(db),
		repository.NewShowRepo(db),
		publisher,
		clock.NewSystem(),
		logger,
		cfg.SecretKey,
	)
	e := router.New(router.Options{
		Handler:   h,
		Renderer:  renderer,
		Logger:    logger,
		Metrics:   middleware.NewMetrics(),
		DB:        db,
		Redis:     rdb,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		CSRF:      cfg.CSRFEnabled,
	})

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown")
	}
}
