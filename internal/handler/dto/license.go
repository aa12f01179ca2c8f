// Package dto provides Data Transfer Objects for API requests and responses.
package dto

// ValidateRequest is the body of POST /validate.
type ValidateRequest struct {
	Email string `json:"email"`
}

// AuthorizationResponse is the verdict returned by POST /validate.
type AuthorizationResponse struct {
	Authorized bool `json:"authorized"`
}

// FailureResponse reports a failed request with an ok flag.
type FailureResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse is a bare error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WebhookAppliedResponse acknowledges a webhook that changed a license.
type WebhookAppliedResponse struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
}

// WebhookIgnoredResponse acknowledges a webhook with an unhandled status.
type WebhookIgnoredResponse struct {
	Received bool `json:"received"`
	Ignored  bool `json:"ignored"`
}

// HelloResponse is returned by GET /.
type HelloResponse struct {
	Hello string `json:"hello"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ReadinessResponse is returned by GET /readyz.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
