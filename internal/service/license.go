// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/licensegate/licensegate/internal/cache"
	"github.com/licensegate/licensegate/internal/license"
	"github.com/licensegate/licensegate/internal/metrics"
)

// PresenceCache caches the outcome of license lookups.
// Implemented by *cache.Cache.
//
// Reads fill the cache with FillLicensePresence, which never replaces an
// existing entry. Mutations write the authoritative value with
// SetLicensePresence, so a lookup that started before a mutation cannot
// leave a stale entry behind.
type PresenceCache interface {
	GetLicensePresence(ctx context.Context, email string) (bool, error)
	FillLicensePresence(ctx context.Context, email string, present bool) (bool, error)
	SetLicensePresence(ctx context.Context, email string, present bool) error
	DeleteLicensePresence(ctx context.Context, email string) error
}

// LicenseService answers entitlement questions and applies webhook
// mutations against the license store.
type LicenseService struct {
	store     license.Store
	configErr error
	cache     PresenceCache
	metrics   metrics.Recorder
	logger    *slog.Logger
}

// Option configures a LicenseService.
type Option func(*LicenseService)

// WithCache enables the read-through presence cache.
func WithCache(c PresenceCache) Option {
	return func(s *LicenseService) {
		s.cache = c
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *LicenseService) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *LicenseService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithConfigError marks the service as unconfigured. err is reported to
// callers verbatim, so it must not contain secrets.
func WithConfigError(err error) Option {
	return func(s *LicenseService) {
		s.configErr = err
	}
}

// NewLicenseService creates a new LicenseService. A nil store leaves the
// service unconfigured.
func NewLicenseService(store license.Store, opts ...Option) *LicenseService {
	s := &LicenseService{
		store:   store,
		metrics: metrics.NewNoop(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil && s.configErr == nil {
		s.configErr = license.ErrNotConfigured
	}
	s.logger = s.logger.With("component", "license_service")
	return s
}

// ConfigError returns why the store is unusable, or nil when it is ready.
func (s *LicenseService) ConfigError() error {
	if s.store == nil {
		return s.configErr
	}
	return nil
}

// Authorize reports whether email holds a license.
// A missing record is a normal false result; any other failure is a
// *license.StoreError.
func (s *LicenseService) Authorize(ctx context.Context, email string) (bool, error) {
	if err := s.ConfigError(); err != nil {
		return false, err
	}

	if s.cache != nil {
		present, err := s.cache.GetLicensePresence(ctx, email)
		if err == nil {
			s.metrics.IncLicenseCacheHit()
			return present, nil
		}
		s.metrics.IncLicenseCacheMiss()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("license cache read failed", "error", err)
		}
	}

	start := time.Now()
	_, err := s.store.Lookup(ctx, email)
	s.metrics.ObserveStoreDuration("lookup", time.Since(start))

	present := true
	if err != nil {
		if !errors.Is(err, license.ErrNotFound) {
			return false, license.NewStoreError("lookup", err)
		}
		present = false
	}

	if s.cache != nil {
		if _, err := s.cache.FillLicensePresence(ctx, email, present); err != nil {
			s.logger.Warn("license cache write failed", "error", err)
		}
	}

	return present, nil
}

// Activate grants a license to email. Repeated calls converge to one record.
func (s *LicenseService) Activate(ctx context.Context, email string) error {
	return s.mutate(ctx, "upsert", email, true, func(ctx context.Context) error {
		return s.store.Upsert(ctx, email)
	})
}

// Revoke removes the license for email. Revoking a missing license succeeds.
func (s *LicenseService) Revoke(ctx context.Context, email string) error {
	return s.mutate(ctx, "delete", email, false, func(ctx context.Context) error {
		return s.store.Delete(ctx, email)
	})
}

func (s *LicenseService) mutate(ctx context.Context, op, email string, present bool, fn func(context.Context) error) error {
	if err := s.ConfigError(); err != nil {
		return err
	}

	start := time.Now()
	err := fn(ctx)
	s.metrics.ObserveStoreDuration(op, time.Since(start))
	if err != nil {
		return license.NewStoreError(op, err)
	}

	// Record the new state even if the request was cancelled after the write landed.
	if s.cache != nil {
		s.recordPresence(context.WithoutCancel(ctx), op, email, present)
	}

	return nil
}

// recordPresence overwrites the cached entry with the post-mutation state.
// If the write fails the entry is dropped instead, so at worst the next
// read goes to the store.
func (s *LicenseService) recordPresence(ctx context.Context, op, email string, present bool) {
	err := s.cache.SetLicensePresence(ctx, email, present)
	if err == nil {
		return
	}
	s.logger.Warn("license cache update failed", "op", op, "error", err)
	if err := s.cache.DeleteLicensePresence(ctx, email); err != nil {
		s.logger.Warn("license cache invalidation failed", "op", op, "error", err)
	}
}

// Ping checks the store when it supports connectivity checks.
func (s *LicenseService) Ping(ctx context.Context) error {
	if err := s.ConfigError(); err != nil {
		return err
	}
	if p, ok := s.store.(license.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
