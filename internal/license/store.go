// Package license defines the contract between the HTTP layer and the
// record store that persists license entitlements.
package license

import (
	"context"
	"errors"

	"github.com/licensegate/licensegate/internal/model"
)

// Store errors.
var (
	// ErrNotFound is the expected outcome of Lookup for an email without a record.
	ErrNotFound = errors.New("license not found")

	// ErrNotConfigured is returned when no store credentials were supplied.
	ErrNotConfigured = errors.New("license store not configured")
)

// Store performs keyed operations against the license record store.
//
// Upsert and Delete are idempotent: repeated Upserts converge to a single
// record and deleting a missing email succeeds.
type Store interface {
	Lookup(ctx context.Context, email string) (*model.License, error)
	Upsert(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// Pinger is implemented by stores that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreError wraps any store failure other than ErrNotFound.
// Error returns the underlying message so it can be surfaced for diagnostics.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": unknown store error"
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err for the given operation. A nil err yields nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err is a store failure (not a not-found).
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
