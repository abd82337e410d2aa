// Package router wires the HTTP surface together.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yarimal/ai-crm/internal/analytics"
	"github.com/yarimal/ai-crm/internal/assistant"
	"github.com/yarimal/ai-crm/internal/http/handlers"
	httpmiddleware "github.com/yarimal/ai-crm/internal/http/middleware"
	"github.com/yarimal/ai-crm/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	AssistantHandler    *assistant.Handler
	ProvidersHandler    *handlers.ProvidersHandler
	ClientsHandler      *handlers.ClientsHandler
	ServicesHandler     *handlers.ServicesHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	BlockedTimesHandler *handlers.BlockedTimesHandler
	ChatsHandler        *handlers.ChatsHandler
	AnalyticsHandler    *analytics.Handler

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
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
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.AssistantHandler != nil {
			api.Mount("/ai", cfg.AssistantHandler.Routes())
		}
		api.Mount("/providers", cfg.ProvidersHandler.Routes())
		api.Mount("/clients", cfg.ClientsHandler.Routes())
		api.Mount("/services", cfg.ServicesHandler.Routes())
		api.Mount("/appointments", cfg.AppointmentsHandler.Routes())
		api.Mount("/blocked-times", cfg.BlockedTimesHandler.Routes())
		api.Mount("/chats", cfg.ChatsHandler.Routes())
		if cfg.AnalyticsHandler != nil {
			api.Mount("/analytics", cfg.AnalyticsHandler.Routes())
		}
	})

	return r
}
