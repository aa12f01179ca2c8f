package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncValidate is a no-op.
func (n *NoopRecorder) IncValidate(outcome string) {}

// IncWebhook is a no-op.
func (n *NoopRecorder) IncWebhook(provider, outcome string) {}

// IncLicenseCacheHit is a no-op.
func (n *NoopRecorder) IncLicenseCacheHit() {}

// IncLicenseCacheMiss is a no-op.
func (n *NoopRecorder) IncLicenseCacheMiss() {}

// ObserveStoreDuration is a no-op.
func (n *NoopRecorder) ObserveStoreDuration(op string, duration time.Duration) {}
