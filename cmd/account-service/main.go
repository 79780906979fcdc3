/**
 * @description
 * This is the main entry point for the account-service. Account reads are
 * enriched with the owner's cards, fetched from the card-service over HTTP.
 *
 * Key features:
 * - Loads application configuration from environment variables.
 * - Initializes the card-service client with a per-call timeout.
 * - Bounds concurrent card lookups per request.
 * - Implements graceful shutdown.
 *
 * @dependencies
 * - The service's internal packages for config, app logic, storage and the API.
 * - The card-service client in pkg/cardclient.
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
	"github.com/rabiot125/Banking-Microservice/pkg/cardclient"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".", config.AccountService)
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
		repo   store.AccountRepository
		pinger store.Pinger
	)
	switch cfg.RepoBackend {
	case config.BackendMemory:
		mem := memstore.NewAccountRepository()
		repo, pinger = mem, mem
		logg.Warn("using in-memory account store, data is lost on restart")
	default:
		pool, err := server.OpenPostgres(ctx, cfg, logg, store.SchemaAccounts)
		if err != nil {
			logg.Fatal("cannot open database", "error", err)
		}
		defer pool.Close()
		repo, pinger = store.NewPostgresAccountRepository(pool), pool
	}

	cards := cardclient.NewClient(cfg.CardServiceURL, cfg.CardLookupTimeout)
	service := app.NewAccountService(repo, cards, app.EnrichmentOptions{
		Timeout:     cfg.CardLookupTimeout,
		Concurrency: cfg.CardLookupConcurrency,
	}, logg)
	router := api.NewAccountRouter(cfg, logg, service, pinger)

	logg.Info("card enrichment configured",
		"card_service_url", cfg.CardServiceURL,
		"timeout", cfg.CardLookupTimeout,
		"concurrency", cfg.CardLookupConcurrency,
	)
	if err := server.Run(ctx, cfg, logg, router); err != nil {
		logg.Error("account-service stopped with error", "error", err)
	}
}
