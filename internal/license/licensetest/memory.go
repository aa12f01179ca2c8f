// Package licensetest provides an in-memory license.Store for tests.
package licensetest

import (
	"context"
	"sync"
	"time"

	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/model"
)

var _ license.Store = (*MemoryStore)(nil)

// MemoryStore is a concurrency-safe license.Store backed by a map.
// Set Err to make every operation fail with a *license.StoreError.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]model.License
	calls   map[string]int

	Err error
}

// NewMemoryStore creates a store pre-populated with emails.
func NewMemoryStore(emails ...string) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]model.License),
		calls:   make(map[string]int),
	}
	now := time.Now().UTC()
	for _, e := range emails {
		s.records[e] = model.License{Email: e, CreatedAt: now, UpdatedAt: now}
	}
	return s
}

// Lookup implements license.Store.
func (s *MemoryStore) Lookup(_ context.Context, email string) (*model.License, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["lookup"]++

	if s.Err != nil {
		return nil, license.NewStoreError("lookup", s.Err)
	}
	lic, ok := s.records[email]
	if !ok {
		return nil, license.ErrNotFound
	}
	return &lic, nil
}

// Upsert implements license.Store.
func (s *MemoryStore) Upsert(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["upsert"]++

	if s.Err != nil {
		return license.NewStoreError("upsert", s.Err)
	}
	now := time.Now().UTC()
	lic, ok := s.records[email]
	if !ok {
		lic = model.License{Email: email, CreatedAt: now}
	}
	lic.UpdatedAt = now
	s.records[email] = lic
	return nil
}

// Delete implements license.Store.
func (s *MemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls["delete"]++

	if s.Err != nil {
		return license.NewStoreError("delete", s.Err)
	}
	delete(s.records, email)
	return nil
}

// Has reports whether a record exists for email.
func (s *MemoryStore) Has(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[email]
	return ok
}

// Len returns the number of records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Calls returns how many times op ("lookup", "upsert", "delete") ran.
func (s *MemoryStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Mutations returns the number of Upsert and Delete calls.
func (s *MemoryStore) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls["upsert"] + s.calls["delete"]
}

// SetErr sets the failure returned by every operation.
func (s *MemoryStore) SetErr(err error) {
	s.mu.Lock()
	s.Err = err
	s.mu.Unlock()
}
