/**
 * @description
 * This file sets up the HTTP routers for the three services using the `chi`
 * routing library. Each service gets the same middleware stack and health
 * endpoints, plus its own /api routes.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: The routing library.
 * - github.com/go-chi/cors: CORS handling.
 * - The service's internal packages for handlers, tracing and middleware.
 */
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rabiot125/Banking-Microservice/internal/app"
	"github.com/rabiot125/Banking-Microservice/internal/config"
	"github.com/rabiot125/Banking-Microservice/internal/logger"
	"github.com/rabiot125/Banking-Microservice/internal/observability"
	"github.com/rabiot125/Banking-Microservice/internal/store"
	"github.com/rabiot125/Banking-Microservice/pkg/middleware"
)

const (
	requestTimeout = 60 * time.Second
	readyTimeout   = 2 * time.Second
)

// NewCustomerRouter creates the customer-service router.
func NewCustomerRouter(cfg *config.Config, log *logger.Logger, service *app.CustomerService, db store.Pinger) http.Handler {
	r := newBaseRouter(cfg, log, db)
	h := NewCustomerHandler(service, log)

	r.Route("/api/customers", func(r chi.Router) {
		r.Get("/", h.ListCustomers)
		r.Post("/", h.CreateCustomer)
		r.Get("/{id}", h.GetCustomer)
		r.Put("/{id}", h.UpdateCustomer)
		r.Delete("/{id}", h.DeleteCustomer)
	})
	return r
}

// NewAccountRouter creates the account-service router.
func NewAccountRouter(cfg *config.Config, log *logger.Logger, service *app.AccountService, db store.Pinger) http.Handler {
	r := newBaseRouter(cfg, log, db)
	h := NewAccountHandler(service, log)

	r.Route("/api/accounts", func(r chi.Router) {
		r.Get("/", h.ListAccounts)
		r.Post("/", h.CreateAccount)
		r.Get("/{id}", h.GetAccount)
		r.Put("/{id}", h.UpdateAccount)
		r.Delete("/{id}", h.DeleteAccount)
	})
	return r
}

// NewCardRouter creates the card-service router.
func NewCardRouter(cfg *config.Config, log *logger.Logger, service *app.CardService, db store.Pinger) http.Handler {
	r := newBaseRouter(cfg, log, db)
	h := NewCardHandler(service, log)

	r.Route("/api/cards", func(r chi.Router) {
		r.Get("/", h.ListCards)
		r.Post("/", h.CreateCard)
		r.Get("/{id}", h.GetCard)
		r.Get("/{id}/accounts", h.ListCardsByOwner)
		r.Put("/{id}/alias", h.UpdateCardAlias)
		r.Delete("/{id}", h.DeleteCard)
	})
	return r
}

func newBaseRouter(cfg *config.Config, log *logger.Logger, db store.Pinger) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(observability.Middleware)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader, "traceparent", "tracestate"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			log.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return r
}
