package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache key prefix and TTLs.
const (
	licenseKeyPrefix = "license:presence:"

	// DefaultLicenseTTL is the TTL for a cached present license.
	DefaultLicenseTTL = 10 * time.Minute

	// NegativeCacheTTL is the TTL for a cached absent license.
	NegativeCacheTTL = 30 * time.Second
)

// Cached presence values.
const (
	presentValue = "1"
	absentValue  = "0"
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetLicensePresence returns whether the cached entry marks email as licensed.
// Returns ErrCacheMiss if nothing is cached.
func (c *Cache) GetLicensePresence(ctx context.Context, email string) (bool, error) {
	val, err := c.client.Get(ctx, licenseKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, ErrCacheMiss
		}
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	switch val {
	case presentValue:
		return true, nil
	case absentValue:
		return false, nil
	default:
		// Corrupted entry - treat as miss
		return false, ErrCacheMiss
	}
}

// SetLicensePresence records the authoritative presence for email,
// replacing any cached entry. Called after every store mutation.
func (c *Cache) SetLicensePresence(ctx context.Context, email string, present bool) error {
	val, ttl := c.entry(present)
	if err := c.client.Set(ctx, licenseKey(email), val, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache license presence: %w", err)
	}
	return nil
}

// FillLicensePresence caches a lookup outcome only when no entry exists,
// so a read that raced a mutation cannot overwrite the mutation's value.
// It reports whether the entry was written.
func (c *Cache) FillLicensePresence(ctx context.Context, email string, present bool) (bool, error) {
	val, ttl := c.entry(present)
	ok, err := c.client.SetNX(ctx, licenseKey(email), val, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to fill license presence: %w", err)
	}
	return ok, nil
}

// DeleteLicensePresence removes the cached entry for email.
func (c *Cache) DeleteLicensePresence(ctx context.Context, email string) error {
	if err := c.client.Del(ctx, licenseKey(email)).Err(); err != nil {
		return fmt.Errorf("failed to delete license presence: %w", err)
	}
	return nil
}

func (c *Cache) entry(present bool) (string, time.Duration) {
	if present {
		return presentValue, c.ttl
	}
	return absentValue, c.negativeTTL
}

// licenseKey hashes the email so raw addresses never appear in key scans.
// The hash is over the exact bytes, keeping lookups case-sensitive.
func licenseKey(email string) string {
	sum := sha256.Sum256([]byte(email))
	return licenseKeyPrefix + hex.EncodeToString(sum[:16])
}
