// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Validate outcomes.
const (
	ValidateAuthorized   = "authorized"
	ValidateUnauthorized = "unauthorized"
	ValidateBadRequest   = "bad_request"
	ValidateTooLarge     = "too_large"
	ValidateUnconfigured = "unconfigured"
	ValidateError        = "error"
)

// Webhook outcomes.
const (
	WebhookActivated    = "activate"
	WebhookRevoked      = "revoke"
	WebhookIgnored      = "ignored"
	WebhookUnauthorized = "unauthorized"
	WebhookMissingData  = "missing_data"
	WebhookTooLarge     = "too_large"
	WebhookError        = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, tests, etc.
type Recorder interface {
	// Authorization checks
	IncValidate(outcome string)

	// Webhook reconciliation
	IncWebhook(provider, outcome string)

	// License store and presence cache
	IncLicenseCacheHit()
	IncLicenseCacheMiss()
	ObserveStoreDuration(op string, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
