/**
 * @description
 * This is the main entry point for the card-service. It issues, lists, renames
 * and deletes cards, and serves the by-owner lookup used by the account-service.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Uses PostgreSQL (with embedded migrations) or the in-memory store.
 * - Masks PAN and CVV on every read path unless explicitly asked not to.
 * - Implements graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, storage and the API.
 * - godotenv for local config.
 */
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rabiot125/Banking-Microservice/internal/api"
	"github.com/rabiot125/Banking-Microservice/internal/app"
	"github.com/rabiot125/Banking-Microservice/internal/config"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/observability"
	"github.com/rabiot125/Banking-Microservice/internal/server"
	"github.com/rabiot125/Banking-Microservice/internal/store"
	"github.com/rabiot125/Banking-Microservice/internal/store/memstore"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".", config.CardService)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("cannot init logger: %v", err)
	}
	defer logg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, logg, cfg)
	if err != nil {
		logg.Fatal("cannot init tracing", "error", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logg.Warn("tracer shutdown failed", "error", err)
		}
	}()

	var (
		repo   store.CardRepository
		pinger store.Pinger
	)
	switch cfg.RepoBackend {
	case config.BackendMemory:
		mem := memstore.NewCardRepository()
		repo, pinger = mem, mem
		logg.Warn("using in-memory card store, data is lost on restart")
	default:
		pool, err := server.OpenPostgres(ctx, cfg, logg, store.SchemaCards)
		if err != nil {
			logg.Fatal("cannot open database", "error", err)
		}
		defer pool.Close()
		repo, pinger = store.NewPostgresCardRepository(pool), pool
	}

	service := app.NewCardService(repo, logg)
	router := api.NewCardRouter(cfg, logg, service, pinger)

	if err := server.Run(ctx, cfg, logg, router); err != nil {
		logg.Error("card-service stopped with error", "error", err)
	}
}
