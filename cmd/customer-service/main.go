/**
 * @description
 * This is the main entry point for the customer-service. It wires configuration,
 * logging, tracing and storage into the customer HTTP API and runs it until a
 * termination signal arrives.
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
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig(".", config.CustomerService)
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
		repo   store.CustomerRepository
		pinger store.Pinger
	)
	switch cfg.RepoBackend {
	case config.BackendMemory:
		mem := memstore.NewCustomerRepository()
		repo, pinger = mem, mem
		logg.Warn("using in-memory customer store, data is lost on restart")
	default:
		pool, err := server.OpenPostgres(ctx, cfg, logg, store.SchemaCustomers)
		if err != nil {
			logg.Fatal("cannot open database", "error", err)
		}
		defer pool.Close()
		repo, pinger = store.NewPostgresCustomerRepository(pool), pool
	}

	service := app.NewCustomerService(repo, logg)
	router := api.NewCustomerRouter(cfg, logg, service, pinger)

	if err := server.Run(ctx, cfg, logg, router); err != nil {
		logg.Error("customer-service stopped with error", "error", err)
	}
}
