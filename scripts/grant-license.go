// Command grant-license grants, revokes or checks a license from the command
// line using the same store configuration as the API server.
//
// Usage:
//
//	go run ./scripts/grant-license.go -email buyer@example.com
//	go run ./scripts/grant-license.go -email buyer@example.com -revoke
//	go run ./scripts/grant-license.go -email buyer@example.com -check -format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/licensegate/licensegate/internal/cache"
	"github.com/licensegate/licensegate/internal/config"
	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/repository"
	"github.com/licensegate/licensegate/internal/service"
	"github.com/licensegate/licensegate/internal/supabase"
)

type output struct {
	Email      string `json:"email"`
	Action     string `json:"action"`
	Authorized bool   `json:"authorized"`
}

func main() {
	var (
		email  = flag.String("email", "", "Email to grant, revoke or check (exact, case-sensitive)")
		revoke = flag.Bool("revoke", false, "Revoke instead of grant")
		check  = flag.Bool("check", false, "Only report whether the email is licensed")
		format = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(1)
	}
	if *revoke && *check {
		fmt.Fprintln(os.Stderr, "-revoke and -check are mutually exclusive")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if err := cfg.StoreConfigError(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open store:", err)
		os.Exit(1)
	}
	defer closeStore()

	// The API answers from Redis when it is configured, so mutations must
	// update it too or the API keeps serving the old answer until the TTL ends.
	licenseCache, err := openCache(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open cache:", err)
		os.Exit(1)
	}

	opts := []service.Option{service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}
	if licenseCache != nil {
		defer licenseCache.Close()
		opts = append(opts, service.WithCache(licenseCache))
	}
	svc := service.NewLicenseService(store, opts...)

	out, err := apply(ctx, svc, *email, modeFor(*revoke, *check))
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Printf("email:      %s\n", out.Email)
	fmt.Printf("action:     %s\n", out.Action)
	fmt.Printf("authorized: %t\n", out.Authorized)
}

func modeFor(revoke, check bool) string {
	switch {
	case check:
		return "check"
	case revoke:
		return "revoke"
	default:
		return "grant"
	}
}

// apply runs the requested action and reports the resulting authorization.
func apply(ctx context.Context, svc *service.LicenseService, email, action string) (output, error) {
	var err error
	switch action {
	case "grant":
		err = svc.Activate(ctx, email)
	case "revoke":
		err = svc.Revoke(ctx, email)
	}
	if err != nil {
		return output{}, fmt.Errorf("%s license: %w", action, err)
	}

	authorized, err := svc.Authorize(ctx, email)
	if err != nil {
		return output{}, fmt.Errorf("check license: %w", err)
	}
	return output{Email: email, Action: action, Authorized: authorized}, nil
}

// openCache connects to the presence cache the API uses. It returns nil
// when no cache is configured.
func openCache(ctx context.Context, cfg *config.Config) (*cache.Cache, error) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}
	return cache.New(ctx, cfg.RedisURL,
		cache.WithTTL(cfg.LicenseCacheTTL),
		cache.WithNegativeTTL(cfg.LicenseNegativeCacheTTL),
	)
}

func openStore(ctx context.Context, cfg *config.Config) (license.Store, func(), error) {
	if cfg.StoreDriver == config.DriverPostgres {
		repo, err := repository.New(ctx, cfg.DatabaseURL, repository.WithTable(cfg.LicenseTable))
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	}

	store, err := supabase.New(supabase.Config{
		URL:            cfg.SupabaseURL,
		ServiceRoleKey: cfg.SupabaseServiceRoleKey,
		Table:          cfg.LicenseTable,
		HTTPClient:     supabase.NewHTTPClient(cfg.StoreTimeout),
	})
	if err != nil {
		return nil, nil, err
	}
	return store, func() {}, nil
}
