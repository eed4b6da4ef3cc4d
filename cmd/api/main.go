package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/guest-assistant/cmd/mainconfig"
	"github.com/wolfman30/guest-assistant/internal/api/router"
	"github.com/wolfman30/guest-assistant/internal/app/bootstrap"
	appconfig "github.com/wolfman30/guest-assistant/internal/config"
	"github.com/wolfman30/guest-assistant/internal/observability/metrics"
	"github.com/wolfman30/guest-assistant/internal/webchat"
	"github.com/wolfman30/guest-assistant/pkg/logging"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 30 * time.Second
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting guest assistant API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	metricsHandler, assistantMetrics := setupMetrics(prometheus.NewRegistry())

	svc, cleanup, err := bootstrap.BuildAssistant(ctx, cfg, mainconfig.Loader(cfg), assistantMetrics, logger)
	if err != nil {
		logger.Error("failed to initialize assistant", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Setup router
	chatHandler := webchat.NewHandler(svc, logger,
		webchat.WithCatalog(svc.Catalog()),
		webchat.WithMetrics(assistantMetrics),
	)
	r := router.New(&router.Config{
		Logger:             logger,
		ChatHandler:        chatHandler,
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     requestTimeout,
	})

	srv := newServer(cfg, r)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics registers the assistant metrics and Go runtime collectors on
// reg and returns the /metrics handler.
func setupMetrics(reg *prometheus.Registry) (http.Handler, *metrics.AssistantMetrics) {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewAssistantMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), m
}

// newServer leaves read/write timeouts unset so WebSocket sessions are not
// cut off; plain HTTP routes are bounded by the router's timeout middleware.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
