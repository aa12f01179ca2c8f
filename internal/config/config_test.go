package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
)

func loadFrom(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	return load(env.Options{Environment: vars})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("expected default AppEnv 'development', got %s", cfg.AppEnv)
	}
	if cfg.AppPort != 8080 {
		t.Errorf("expected default AppPort 8080, got %d", cfg.AppPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default LogLevel 'info', got %s", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("expected default LogFormat 'json', got %s", cfg.LogFormat)
	}
	if cfg.StoreDriver != DriverSupabase {
		t.Errorf("expected default StoreDriver %q, got %s", DriverSupabase, cfg.StoreDriver)
	}
	if cfg.LicenseTable != "licenses" {
		t.Errorf("expected default LicenseTable 'licenses', got %s", cfg.LicenseTable)
	}
	if cfg.StoreTimeout != 10*time.Second {
		t.Errorf("expected default StoreTimeout 10s, got %s", cfg.StoreTimeout)
	}
	if cfg.LicenseCacheTTL != 10*time.Minute {
		t.Errorf("expected default LicenseCacheTTL 10m, got %s", cfg.LicenseCacheTTL)
	}
	if cfg.LicenseNegativeCacheTTL != 30*time.Second {
		t.Errorf("expected default LicenseNegativeCacheTTL 30s, got %s", cfg.LicenseNegativeCacheTTL)
	}
	if !cfg.MetricsEnabled {
		t.Error("expected metrics to be enabled by default")
	}
	if cfg.MaxRequestBodySize != 1048576 {
		t.Errorf("expected default MaxRequestBodySize 1048576, got %d", cfg.MaxRequestBodySize)
	}
	if cfg.CacheEnabled() {
		t.Error("expected cache to be disabled without REDIS_URL")
	}
}

func TestLoad_MissingStoreCredentialsIsNotAnError(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	storeErr := cfg.StoreConfigError()
	if storeErr == nil {
		t.Fatal("expected store config error")
	}
	if storeErr.Error() != MissingSupabaseConfig {
		t.Errorf("expected %q, got %q", MissingSupabaseConfig, storeErr.Error())
	}
}

func TestLoad_WithSupabaseVars(t *testing.T) {
	cfg, err := loadFrom(t, map[string]string{
		"SUPABASE_URL":              "https://abc.supabase.co",
		"SUPABASE_SERVICE_ROLE_KEY": "service-role",
		"WEBHOOK_SECRET":            "s3cret",
		"REDIS_URL":                 "redis://localhost:6379",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.SupabaseURL != "https://abc.supabase.co" {
		t.Errorf("expected SupabaseURL to be set, got %s", cfg.SupabaseURL)
	}
	if cfg.WebhookSecret != "s3cret" {
		t.Error("expected WebhookSecret to be set")
	}
	if err := cfg.StoreConfigError(); err != nil {
		t.Errorf("expected no store config error, got %v", err)
	}
	if !cfg.CacheEnabled() {
		t.Error("expected cache to be enabled")
	}
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	_, err := loadFrom(t, map[string]string{"STORE_DRIVER": "mysql"})
	if err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := loadFrom(t, map[string]string{"STORE_TIMEOUT": "soon"})
	if err == nil {
		t.Fatal("expected error for invalid duration, got nil")
	}
}

func TestConfig_StoreConfigError(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "supabase missing url",
			cfg:     Config{StoreDriver: DriverSupabase, SupabaseServiceRoleKey: "k"},
			wantErr: MissingSupabaseConfig,
		},
		{
			name:    "supabase missing key",
			cfg:     Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x.supabase.co"},
			wantErr: MissingSupabaseConfig,
		},
		{
			name:    "supabase whitespace key",
			cfg:     Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x.supabase.co", SupabaseServiceRoleKey: "  "},
			wantErr: MissingSupabaseConfig,
		},
		{
			name: "supabase configured",
			cfg:  Config{StoreDriver: DriverSupabase, SupabaseURL: "https://x.supabase.co", SupabaseServiceRoleKey: "k"},
		},
		{
			name:    "postgres missing url",
			cfg:     Config{StoreDriver: DriverPostgres, SupabaseURL: "https://x.supabase.co", SupabaseServiceRoleKey: "k"},
			wantErr: MissingPostgresConfig,
		},
		{
			name: "postgres configured",
			cfg:  Config{StoreDriver: DriverPostgres, DatabaseURL: "postgres://localhost/licenses"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.StoreConfigError()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfig_GetCORSAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example.com, ,https://b.example.com "}
	got := cfg.GetCORSAllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example.com" || got[1] != "https://b.example.com" {
		t.Errorf("unexpected origins: %v", got)
	}

	cfg.CORSAllowedOrigins = ""
	if cfg.GetCORSAllowedOrigins() != nil {
		t.Error("expected nil origins for empty config")
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{AppEnv: "development"}
	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment to return true")
	}

	cfg.AppEnv = "production"
	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment to return false")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{AppEnv: "production"}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction to return true")
	}

	cfg.AppEnv = "development"
	if cfg.IsProduction() {
		t.Error("expected IsProduction to return false")
	}
}
