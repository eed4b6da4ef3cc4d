package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/wolfman30/guest-assistant/internal/http/middleware"
	"github.com/wolfman30/guest-assistant/internal/webchat"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *webchat.Handler
	MetricsHandler     http.Handler
	// CORSAllowedOrigins may call /api/message and open /ws from a
	// browser. Empty allows no foreign origin.
	CORSAllowedOrigins []string
	// RequestTimeout bounds non-WebSocket requests. Zero disables it.
	RequestTimeout time.Duration
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	cors := httpmiddleware.NewCORSPolicy(cfg.CORSAllowedOrigins)

	// Plain HTTP endpoints
	r.Group(func(public chi.Router) {
		public.Use(middleware.Compress(5))
		if cfg.RequestTimeout > 0 {
			public.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		public.Get("/health", cfg.ChatHandler.HandleHealth)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		public.Get("/", cfg.ChatHandler.HandleIndex)

		// The widget may be embedded on other sites; only the chat
		// endpoint is exposed cross-origin.
		public.Group(func(api chi.Router) {
			api.Use(cors.Handler(http.MethodPost))
			api.Post("/api/message", cfg.ChatHandler.HandleMessage)
			api.Options("/api/message", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		})
	})

	// Long-lived connections stay outside compression and timeouts.
	r.With(cors.RequireOrigin).Get("/ws", cfg.ChatHandler.HandleWebSocket)

	return r
}
