//go:build e2e

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/licensegate/licensegate/internal/testutil"
)

// TestE2ELicenseLifecycle drives a running server through the full
// grant/check/revoke cycle. Run with:
//
//	WEBHOOK_SECRET=... LICENSEGATE_BASE_URL=http://localhost:8080 go test -tags e2e ./cmd/api
func TestE2ELicenseLifecycle(t *testing.T) {
	baseURL := envOrDefault("LICENSEGATE_BASE_URL", "http://localhost:8080")
	secret := testutil.RequireEnv(t, "WEBHOOK_SECRET")
	email := testutil.UniqueEmail("e2e")

	status, body := postJSON(t, baseURL+"/validate", "", map[string]any{"email": email})
	expectBody(t, status, body, http.StatusOK, map[string]any{"authorized": false})

	for i := 0; i < 2; i++ {
		status, body = postJSON(t, baseURL+"/webhook/provider", secret, map[string]any{
			"status":   "paid",
			"customer": map[string]any{"email": email},
		})
		expectBody(t, status, body, http.StatusOK, map[string]any{"ok": true, "action": "activate"})
	}

	status, body = postJSON(t, baseURL+"/validate", "", map[string]any{"email": email})
	expectBody(t, status, body, http.StatusOK, map[string]any{"authorized": true})

	status, body = postJSON(t, baseURL+"/webhook/default", secret, map[string]any{
		"email":  email,
		"status": "pending",
	})
	expectBody(t, status, body, http.StatusOK, map[string]any{"received": true, "ignored": true})

	status, body = postJSON(t, baseURL+"/webhook/default", "wrong-"+secret, map[string]any{
		"email":  email,
		"status": "refunded",
	})
	expectBody(t, status, body, http.StatusUnauthorized, map[string]any{"error": "Unauthorized"})

	for i := 0; i < 2; i++ {
		status, body = postJSON(t, baseURL+"/webhook/default", secret, map[string]any{
			"email":  email,
			"status": "refunded",
		})
		expectBody(t, status, body, http.StatusOK, map[string]any{"ok": true, "action": "revoke"})
	}

	status, body = postJSON(t, baseURL+"/validate", "", map[string]any{"email": email})
	expectBody(t, status, body, http.StatusOK, map[string]any{"authorized": false})
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func postJSON(t *testing.T, url, token string, payload any) (int, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("encode payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Webhook-Token", token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s: %v", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var body map[string]any
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode response %q: %v", data, err)
	}
	return resp.StatusCode, body
}

func expectBody(t *testing.T, status int, body map[string]any, wantStatus int, want map[string]any) {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status = %d, want %d (body %v)", status, wantStatus, body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("%s = %v, want %v (body %v)", k, body[k], v, body)
		}
	}
}
