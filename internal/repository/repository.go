// Package repository provides the PostgreSQL license store.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// DefaultTable is the license table name used when none is configured.
const DefaultTable = "licenses"

// Repository provides database access methods.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// Option configures a Repository.
type Option func(*Repository)

// WithTable overrides the license table name. The name is quoted as an
// identifier, so it may not be schema-qualified.
func WithTable(name string) Option {
	return func(r *Repository) {
		if name != "" {
			r.table = name
		}
	}
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string, opts ...Option) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewWithPool(pool, opts...), nil
}

// NewWithPool wraps an existing pool.
func NewWithPool(pool *pgxpool.Pool, opts ...Option) *Repository {
	r := &Repository{pool: pool, table: DefaultTable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// quotedTable returns the table identifier safe for interpolation.
func (r *Repository) quotedTable() string {
	return pq.QuoteIdentifier(r.table)
}
