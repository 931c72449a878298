package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. Optional parts are left
// nil to switch them off.
type RouterConfig struct {
	SessionHandler  *handler.SessionHandler
	TransferHandler *handler.TransferHandler
	AccountHandler  *handler.AccountHandler
	LedgerHandler   *handler.LedgerHandler
	HealthHandler   *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	// Authenticator guards the customer routes; nil leaves them open.
	Authenticator  middleware.TokenVerifier
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         zerolog.Logger
	// AdminRoutes exposes user seeding and account registration.
	AdminRoutes bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.SessionHandler != nil {
			r.Post("/sessions", cfg.SessionHandler.Open)
		}

		// Operator endpoints
		r.Get("/ledger/consistency", cfg.LedgerHandler.CheckConsistency)
		r.Get("/ledger/reconciliation", cfg.LedgerHandler.Report)
		r.Get("/accounts/{id}/reconciliation", cfg.LedgerHandler.Reconcile)

		if cfg.AdminRoutes {
			if cfg.SessionHandler != nil {
				r.Post("/users", cfg.SessionHandler.CreateUser)
			}
			r.Post("/accounts", cfg.AccountHandler.Register)
		}

		// Customer endpoints
		r.Group(func(r chi.Router) {
			if cfg.Authenticator != nil {
				r.Use(middleware.Authenticate(cfg.Authenticator, cfg.authFailures()))
			}

			r.Group(func(r chi.Router) {
				if cfg.IdempotencyStore != nil {
					idempotency := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.idempotentReplays())
					r.Use(idempotency.Wrap)
				}
				r.Post("/transfers", cfg.TransferHandler.Create)
			})

			r.Get("/accounts/{id}", cfg.AccountHandler.Get)
			r.Get("/accounts/{id}/transactions", cfg.LedgerHandler.History)
			r.Get("/transactions/{trackingCode}", cfg.LedgerHandler.Lookup)
			r.Get("/users/{id}/accounts", cfg.AccountHandler.ListForUser)
		})
	})

	return r
}

func (cfg RouterConfig) authFailures() *prometheus.CounterVec {
	if cfg.Metrics == nil {
		return nil
	}
	return cfg.Metrics.AuthFailures
}

func (cfg RouterConfig) idempotentReplays() prometheus.Counter {
	if cfg.Metrics == nil {
		return nil
	}
	return cfg.Metrics.IdempotentReplays
}
