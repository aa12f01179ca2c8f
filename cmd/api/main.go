// Package main is the entrypoint for the licensegate API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/licensegate/licensegate/internal/cache"
	"github.com/licensegate/licensegate/internal/config"
	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/metrics"
	"github.com/licensegate/licensegate/internal/repository"
	"github.com/licensegate/licensegate/internal/server"
	"github.com/licensegate/licensegate/internal/service"
	"github.com/licensegate/licensegate/internal/supabase"
	"github.com/licensegate/licensegate/internal/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// A missing .env file is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Metrics
	var recorder metrics.Recorder = metrics.NewNoop()
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		promRecorder, err := metrics.NewPrometheus(reg)
		if err != nil {
			return err
		}
		recorder = promRecorder
		gatherer = reg
	}

	// License store
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []service.Option{
		service.WithMetrics(recorder),
		service.WithLogger(logger),
	}
	if store == nil {
		opts = append(opts, service.WithConfigError(cfg.StoreConfigError()))
	}

	deps := routerDeps{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		gatherer: gatherer,
	}

	// Presence cache
	var cacheClient *cache.Cache
	if cfg.CacheEnabled() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL,
			cache.WithTTL(cfg.LicenseCacheTTL),
			cache.WithNegativeTTL(cfg.LicenseNegativeCacheTTL),
		)
		if err != nil {
			// The cache is optional; serve straight from the store.
			logger.Warn(
				"failed to connect to Redis, continuing without license cache",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			cacheClient = nil
		} else {
			logger.Info("connected to Redis")
			opts = append(opts, service.WithCache(cacheClient))
			deps.cache = cacheClient
		}
	}

	deps.svc = service.NewLicenseService(store, opts...)
	deps.providers = webhook.NewRegistry(webhook.Secrets{
		Shared: cfg.WebhookSecret,
		Stripe: cfg.StripeWebhookSecret,
	})

	if cfg.WebhookSecret == "" {
		logger.Warn("WEBHOOK_SECRET is not set; token-authenticated webhooks will be rejected")
	}

	srv := server.New(newRouter(deps), server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	if closeStore != nil {
		srv.OnShutdown(cfg.StoreDriver, closeStore)
	}
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store_driver", cfg.StoreDriver,
		"store_configured", store != nil,
		"cache_enabled", cacheClient != nil,
		"metrics_enabled", cfg.MetricsEnabled,
		"webhook_providers", deps.providers.Names(),
	)

	return srv.Run(ctx)
}

// openStore builds the configured license backend. It returns a nil store
// when credentials are missing so the service can report the problem per
// request instead of refusing to start.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (license.Store, server.ShutdownFunc, error) {
	if err := cfg.StoreConfigError(); err != nil {
		logger.Warn("license store not configured", "driver", cfg.StoreDriver, "reason", err.Error())
		return nil, nil, nil
	}

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		repo, err := repository.New(ctx, cfg.DatabaseURL, repository.WithTable(cfg.LicenseTable))
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			return nil, nil, errors.New("database unavailable")
		}
		logger.Info("connected to database")
		return repo, func(context.Context) error {
			repo.Close()
			return nil
		}, nil

	default:
		store, err := supabase.New(supabase.Config{
			URL:            cfg.SupabaseURL,
			ServiceRoleKey: cfg.SupabaseServiceRoleKey,
			Table:          cfg.LicenseTable,
			HTTPClient:     supabase.NewHTTPClient(cfg.StoreTimeout),
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using Supabase license store", "url", redactURL(cfg.SupabaseURL), "table", cfg.LicenseTable)
		return store, nil, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
