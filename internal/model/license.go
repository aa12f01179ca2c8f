// Package model defines domain entities for the application.
package model

import "time"

// License represents an entitlement record keyed by email.
// The presence of a record means the email is entitled; no other field
// takes part in the authorization decision.
type License struct {
	ID        string    `json:"id,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
