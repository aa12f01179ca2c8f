package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"

	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/model"
)

// Compile-time check that Repository satisfies license.Store.
var _ license.Store = (*Repository)(nil)

// Lookup retrieves the license for an email. Emails are compared exactly.
func (r *Repository) Lookup(ctx context.Context, email string) (*model.License, error) {
	query := fmt.Sprintf(`
		SELECT id, email, created_at, updated_at
		FROM %s
		WHERE email = $1
	`, r.quotedTable())

	var lic model.License
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&lic.ID,
		&lic.Email,
		&lic.CreatedAt,
		&lic.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, license.ErrNotFound
		}
		return nil, license.NewStoreError("lookup", fmt.Errorf("failed to get license by email: %w", err))
	}

	return &lic, nil
}

// Upsert inserts a license for email or refreshes the existing one.
// The row id is only assigned on first insert.
func (r *Repository) Upsert(ctx context.Context, email string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (email) DO UPDATE
		SET updated_at = EXCLUDED.updated_at
	`, r.quotedTable())

	_, err := r.pool.Exec(ctx, query,
		ulid.Make().String(),
		email,
		time.Now().UTC(),
	)
	if err != nil {
		return license.NewStoreError("upsert", fmt.Errorf("failed to upsert license: %w", err))
	}

	return nil
}

// Delete removes the license for email. Removing a missing email is not an error.
func (r *Repository) Delete(ctx context.Context, email string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE email = $1`, r.quotedTable())

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return license.NewStoreError("delete", fmt.Errorf("failed to delete license: %w", err))
	}

	return nil
}

// Count returns the number of license rows for email.
// Used by tooling and tests to assert upsert convergence.
func (r *Repository) Count(ctx context.Context, email string) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE email = $1`, r.quotedTable())

	var n int
	if err := r.pool.QueryRow(ctx, query, email).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count licenses: %w", err)
	}
	return n, nil
}
