// Package router assembles the public HTTP surface.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rowanhq/leadflow/internal/http/handlers"
	httpmiddleware "github.com/rowanhq/leadflow/internal/http/middleware"
	"github.com/rowanhq/leadflow/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *handlers.IntakeHandler
	DialogueHandler    *handlers.DialogueHandler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitPerSecond guards the unauthenticated endpoints; zero
	// disables limiting (tests).
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Group(func(public chi.Router) {
		if cfg.RateLimitPerSecond > 0 {
			burst := cfg.RateLimitBurst
			if burst <= 0 {
				burst = 10
			}
			public.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, burst))
		}
		public.Post("/intake", cfg.IntakeHandler.Submit)
		public.Get("/proposal", cfg.IntakeHandler.FetchProposal)
		public.Post("/dialogue/turn", cfg.DialogueHandler.Turn)
	})

	return r
}
