package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Validate         map[string]uint64
	Webhook          map[string]uint64 // keyed by "provider/outcome"
	LicenseCacheHits uint64
	LicenseCacheMiss uint64
	StoreOps         map[string]uint64
	StoreDurationNs  int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu              sync.Mutex
	validate        map[string]uint64
	webhook         map[string]uint64
	storeOps        map[string]uint64
	cacheHits       uint64
	cacheMisses     uint64
	storeDurationNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		validate: make(map[string]uint64),
		webhook:  make(map[string]uint64),
		storeOps: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Validate:         copyCounts(m.validate),
		Webhook:          copyCounts(m.webhook),
		StoreOps:         copyCounts(m.storeOps),
		LicenseCacheHits: atomic.LoadUint64(&m.cacheHits),
		LicenseCacheMiss: atomic.LoadUint64(&m.cacheMisses),
		StoreDurationNs:  atomic.LoadInt64(&m.storeDurationNs),
	}
}

// IncValidate increments the validate counter for outcome.
func (m *InMemoryRecorder) IncValidate(outcome string) {
	m.mu.Lock()
	m.validate[outcome]++
	m.mu.Unlock()
}

// IncWebhook increments the webhook counter for provider and outcome.
func (m *InMemoryRecorder) IncWebhook(provider, outcome string) {
	m.mu.Lock()
	m.webhook[provider+"/"+outcome]++
	m.mu.Unlock()
}

// IncLicenseCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncLicenseCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncLicenseCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncLicenseCacheMiss() {
	atomic.AddUint64(&m.cacheMisses, 1)
}

// ObserveStoreDuration records a store round-trip.
func (m *InMemoryRecorder) ObserveStoreDuration(op string, duration time.Duration) {
	m.mu.Lock()
	m.storeOps[op]++
	m.mu.Unlock()
	atomic.AddInt64(&m.storeDurationNs, duration.Nanoseconds())
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
