package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/licensegate/licensegate/internal/config"
	"github.com/licensegate/licensegate/internal/handler"
	"github.com/licensegate/licensegate/internal/metrics"
	"github.com/licensegate/licensegate/internal/middleware"
	"github.com/licensegate/licensegate/internal/service"
	"github.com/licensegate/licensegate/internal/webhook"
)

type routerDeps struct {
	cfg       *config.Config
	logger    *slog.Logger
	svc       *service.LicenseService
	providers *webhook.Registry
	recorder  metrics.Recorder
	// cache is nil when no presence cache is connected.
	cache handler.HealthChecker
	// gatherer is nil when metrics are disabled.
	gatherer prometheus.Gatherer
}

// newRouter configures the chi router with all routes and middleware.
func newRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: d.cfg.IsDevelopment(),
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = d.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	h := handler.New()
	healthHandler := handler.NewHealthHandler(d.svc, d.cache)
	validateHandler := handler.NewValidateHandler(d.svc, d.recorder, d.logger)
	webhookHandler := handler.NewWebhookHandler(d.svc, d.providers, d.recorder, d.logger)

	r.Get("/", h.Hello)
	r.Get("/health", healthHandler.Health)
	r.Get("/readyz", healthHandler.Readyz)
	if d.gatherer != nil {
		r.Method("GET", "/metrics", handler.NewMetricsHandler(d.gatherer))
	}

	r.Post("/validate", validateHandler.Validate)
	r.Post("/webhook/{provider}", webhookHandler.Receive)

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
