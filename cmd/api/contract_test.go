package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/licensegate/licensegate/internal/config"
	"github.com/licensegate/licensegate/internal/license/licensetest"
	"github.com/licensegate/licensegate/internal/metrics"
	"github.com/licensegate/licensegate/internal/service"
	"github.com/licensegate/licensegate/internal/webhook"
)

const contractSecret = "contract-secret"

// loadSpec loads and validates the OpenAPI spec.
func loadSpec(t *testing.T) (*openapi3.T, routers.Router) {
	t.Helper()

	path := filepath.Join("..", "..", "docs", "api", "openapi.yaml")
	loader := openapi3.NewLoader()

	spec, err := loader.LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load OpenAPI spec from %s: %v", path, err)
	}

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	router, err := gorillamux.NewRouter(spec)
	if err != nil {
		t.Fatalf("Failed to create router from spec: %v", err)
	}

	return spec, router
}

func contractDeps(store *licensetest.MemoryStore, configured bool) routerDeps {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewInMemory()

	var svc *service.LicenseService
	if configured {
		svc = service.NewLicenseService(store, service.WithMetrics(recorder), service.WithLogger(logger))
	} else {
		svc = service.NewLicenseService(nil,
			service.WithConfigError(errors.New(config.MissingSupabaseConfig)),
			service.WithLogger(logger),
		)
	}

	return routerDeps{
		cfg:       &config.Config{AppEnv: "development", MaxRequestBodySize: 1 << 20},
		logger:    logger,
		svc:       svc,
		providers: webhook.NewRegistry(webhook.Secrets{Shared: contractSecret}),
		recorder:  recorder,
	}
}

func newContractRouter(store *licensetest.MemoryStore, configured bool) http.Handler {
	return newRouter(contractDeps(store, configured))
}

func TestOpenAPISpecValid(t *testing.T) {
	spec, _ := loadSpec(t)
	if spec.Info.Title != "licensegate API" {
		t.Errorf("unexpected spec title %q", spec.Info.Title)
	}
}

func TestContract_Responses(t *testing.T) {
	_, specRouter := loadSpec(t)

	tests := []struct {
		name       string
		configured bool
		method     string
		path       string
		body       string
		token      string
		wantStatus int
	}{
		{"hello", true, http.MethodGet, "/", "", "", http.StatusOK},
		{"health", true, http.MethodGet, "/health", "", "", http.StatusOK},
		{"readyz", true, http.MethodGet, "/readyz", "", "", http.StatusOK},
		{"readyz unconfigured", false, http.MethodGet, "/readyz", "", "", http.StatusServiceUnavailable},
		{"validate authorized", true, http.MethodPost, "/validate", `{"email":"known@x.com"}`, "", http.StatusOK},
		{"validate unknown", true, http.MethodPost, "/validate", `{"email":"new@x.com"}`, "", http.StatusOK},
		{"validate missing email", true, http.MethodPost, "/validate", `{}`, "", http.StatusBadRequest},
		{"validate unconfigured", false, http.MethodPost, "/validate", `{"email":"a@x.com"}`, "", http.StatusInternalServerError},
		{"webhook activate", true, http.MethodPost, "/webhook/default", `{"email":"a@x.com","status":"paid"}`, contractSecret, http.StatusOK},
		{"webhook revoke", true, http.MethodPost, "/webhook/default", `{"email":"known@x.com","status":"refunded"}`, contractSecret, http.StatusOK},
		{"webhook ignored", true, http.MethodPost, "/webhook/default", `{"email":"a@x.com","status":"pending"}`, contractSecret, http.StatusOK},
		{"webhook unauthorized", true, http.MethodPost, "/webhook/default", `{"email":"a@x.com","status":"paid"}`, "nope", http.StatusUnauthorized},
		{"webhook missing data", true, http.MethodPost, "/webhook/default", `{"status":"paid"}`, contractSecret, http.StatusBadRequest},
		{"webhook unconfigured", false, http.MethodPost, "/webhook/default", `{"email":"a@x.com","status":"paid"}`, contractSecret, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newContractRouter(licensetest.NewMemoryStore("known@x.com"), tt.configured)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("X-Webhook-Token", tt.token)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			// A fresh request for route matching; the original body was consumed.
			specReq := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			specReq.Header.Set("Content-Type", "application/json")
			route, pathParams, err := specRouter.FindRoute(specReq)
			if err != nil {
				t.Fatalf("route not found in spec: %v", err)
			}

			input := &openapi3filter.ResponseValidationInput{
				RequestValidationInput: &openapi3filter.RequestValidationInput{
					Request:    specReq,
					PathParams: pathParams,
					Route:      route,
				},
				Status: rec.Code,
				Header: rec.Header(),
				Body:   io.NopCloser(bytes.NewReader(rec.Body.Bytes())),
			}
			if err := openapi3filter.ValidateResponse(context.Background(), input); err != nil {
				t.Errorf("Response validation failed: %v\nbody: %s", err, rec.Body.String())
			}
		})
	}
}

func TestRouter_MetricsDisabled(t *testing.T) {
	app := newContractRouter(licensetest.NewMemoryStore(), true)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 when metrics are disabled, got %d", rec.Code)
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	app := newContractRouter(licensetest.NewMemoryStore(), true)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}
