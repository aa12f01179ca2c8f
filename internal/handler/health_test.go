package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockChecker struct {
	err error
}

func (m *mockChecker) Ping(ctx context.Context) error {
	return m.err
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.Health(rr, req)

	assertJSON(t, rr, http.StatusOK, map[string]any{"ok": true})
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		store      HealthChecker
		cache      HealthChecker
		wantStatus int
		wantStore  string
		wantRedis  string
	}{
		{
			name:       "store ok without cache",
			store:      &mockChecker{},
			wantStatus: http.StatusOK,
			wantStore:  "ok",
			wantRedis:  "not configured",
		},
		{
			name:       "store and cache ok",
			store:      &mockChecker{},
			cache:      &mockChecker{},
			wantStatus: http.StatusOK,
			wantStore:  "ok",
			wantRedis:  "ok",
		},
		{
			name:       "store failing",
			store:      &mockChecker{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantStore:  "error: connection refused",
			wantRedis:  "not configured",
		},
		{
			name:       "cache failing",
			store:      &mockChecker{},
			cache:      &mockChecker{err: errors.New("redis down")},
			wantStatus: http.StatusServiceUnavailable,
			wantStore:  "ok",
			wantRedis:  "error: redis down",
		},
		{
			name:       "no store",
			wantStatus: http.StatusServiceUnavailable,
			wantStore:  "not configured",
			wantRedis:  "not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.store, tt.cache)

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rr := httptest.NewRecorder()
			h.Readyz(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			body := decodeBody(t, rr)
			checks, ok := body["checks"].(map[string]any)
			if !ok {
				t.Fatalf("expected checks object, got %v", body["checks"])
			}
			if checks["store"] != tt.wantStore {
				t.Errorf("expected store check %q, got %v", tt.wantStore, checks["store"])
			}
			if checks["redis"] != tt.wantRedis {
				t.Errorf("expected redis check %q, got %v", tt.wantRedis, checks["redis"])
			}
		})
	}
}

func TestReadyz_UnconfiguredService(t *testing.T) {
	env := newUnconfiguredEnv(t)
	rr := env.do(t, http.MethodGet, "/readyz", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}
