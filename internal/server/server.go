/**
 * @description
 * Process plumbing shared by the three service binaries: opening the Postgres
 * pool (with optional auto-migration) and running the HTTP server until the
 * context is cancelled, then shutting it down gracefully.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5/pgxpool: database connection pool.
 */
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabiot125/Banking-Microservice/internal/config"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/store"
)

const readHeaderTimeout = 10 * time.Second

// OpenPostgres connects to cfg.DatabaseURL and, when AUTO_MIGRATE is set,
// applies the pending migrations for schema.
func OpenPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger, schema store.Schema) (*pgxpool.Pool, error) {
	pool, err := store.NewPool(ctx, cfg.DatabaseURL, store.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("database connection established", "url", cfg.RedactedDatabaseURL())

	if cfg.AutoMigrate {
		if err := store.MigrateUp(ctx, pool, schema, log); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info("database migrations applied", "schema", schema)
	}
	return pool, nil
}

// Run serves handler on cfg.ServerPort until ctx is cancelled, then drains
// in-flight requests for at most cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "service", cfg.Service, "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("could not start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "service", cfg.Service)
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("server gracefully stopped", "service", cfg.Service)
	return nil
}
