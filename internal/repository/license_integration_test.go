//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/testutil"
)

// ============================================================================
// License Repository Integration Tests
// ============================================================================

func TestIntegrationLicense_LookupMissing(t *testing.T) {
	ctx, repo := newLicenseTestEnv(t)

	_, err := repo.Lookup(ctx, testutil.UniqueEmail("missing"))
	if !errors.Is(err, license.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIntegrationLicense_UpsertIsIdempotent(t *testing.T) {
	ctx, repo := newLicenseTestEnv(t)
	email := testutil.UniqueEmail("upsert")

	for i := 0; i < 3; i++ {
		if err := repo.Upsert(ctx, email); err != nil {
			t.Fatalf("Upsert #%d failed: %v", i+1, err)
		}
	}

	n, err := repo.Count(ctx, email)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected exactly 1 row, got %d", n)
	}

	lic, err := repo.Lookup(ctx, email)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if lic.Email != email {
		t.Errorf("email mismatch: got %q, want %q", lic.Email, email)
	}
	if lic.ID == "" {
		t.Error("ID should be set")
	}
}

func TestIntegrationLicense_EmailIsCaseSensitive(t *testing.T) {
	ctx, repo := newLicenseTestEnv(t)

	if err := repo.Upsert(ctx, "Case@Example.com"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	_, err := repo.Lookup(ctx, "case@example.com")
	if !errors.Is(err, license.ErrNotFound) {
		t.Errorf("expected lowercase lookup to miss, got %v", err)
	}
}

func TestIntegrationLicense_DeleteIsIdempotent(t *testing.T) {
	ctx, repo := newLicenseTestEnv(t)
	email := testutil.UniqueEmail("delete")

	if err := repo.Delete(ctx, email); err != nil {
		t.Fatalf("Delete of missing email failed: %v", err)
	}
	if err := repo.Upsert(ctx, email); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := repo.Delete(ctx, email); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := repo.Lookup(ctx, email)
	if !errors.Is(err, license.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func newLicenseTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetLicensesSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset licenses schema: %v", err)
	}

	return ctx, repo
}
