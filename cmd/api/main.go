package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mischa23v/traf3li-backend-sub004/internal/audit"
	"github.com/mischa23v/traf3li-backend-sub004/internal/cases"
	apphttp "github.com/mischa23v/traf3li-backend-sub004/internal/http"
	"github.com/mischa23v/traf3li-backend-sub004/internal/http/router"
	"github.com/mischa23v/traf3li-backend-sub004/migrations"
	"github.com/mischa23v/traf3li-backend-sub004/platform/cache"
	"github.com/mischa23v/traf3li-backend-sub004/platform/config"
	"github.com/mischa23v/traf3li-backend-sub004/platform/db"
	"github.com/mischa23v/traf3li-backend-sub004/platform/events"
	"github.com/mischa23v/traf3li-backend-sub004/platform/logger"
	"github.com/mischa23v/traf3li-backend-sub004/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.Files, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Optional redis cache for pipeline statistics
	var statsCache *cache.Cache
	if cfg.IsStatsCacheEnabled() {
		client := cache.NewClient(cfg.GetRedisAddr(), cfg.GetRedisPassword())
		statsCache = cache.New(client, cfg.GetStatsCacheTTL())
		defer client.Close()
		log.Info("statistics cache enabled", "addr", cfg.GetRedisAddr(), "ttl", cfg.GetStatsCacheTTL())
	} else {
		log.Info("statistics cache disabled; statistics recomputed per request")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	casesModule := cases.NewModule(pool, eventBus, val, statsCache, log)

	// Audit module subscribes to case events (best-effort trail) and serves
	// the audit read endpoint, gated on case access.
	auditModule := audit.NewModule(pool, casesModule.Service(), log)
	auditModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			casesModule,
			auditModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}

		// Let in-flight audit handlers finish before the pool closes.
		eventBus.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
