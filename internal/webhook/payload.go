package webhook

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrMissingData is returned when an event lacks an email or a status.
var ErrMissingData = errors.New("missing data")

// RawPayload is an undecoded webhook body. A nil RawPayload is valid and
// behaves as an empty object.
type RawPayload map[string]any

// DecodePayload parses body as a JSON object. Empty, malformed or non-object
// bodies yield an empty payload.
func DecodePayload(body []byte) RawPayload {
	var raw RawPayload
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return RawPayload{}
	}
	return raw
}

// Field is a dotted path into a payload, e.g. "customer.email".
type Field string

// Lookup returns the string at f. Only non-empty strings count as present.
func (p RawPayload) Lookup(f Field) (string, bool) {
	if p == nil || f == "" {
		return "", false
	}

	var cur any = map[string]any(p)
	for _, part := range strings.Split(string(f), ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = obj[part]; !ok {
			return "", false
		}
	}

	s, ok := cur.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Chain is an ordered list of candidate fields; the first present one wins.
type Chain []Field

// Resolve returns the first present value in the chain.
func (c Chain) Resolve(p RawPayload) (string, bool) {
	for _, f := range c {
		if v, ok := p.Lookup(f); ok {
			return v, true
		}
	}
	return "", false
}

// Default fallback chains, in priority order.
var (
	DefaultEmailChain  = Chain{"email", "buyer.email", "customer.email"}
	DefaultStatusChain = Chain{"status", "order_status", "event"}
)

// Event is a normalized webhook delivery.
type Event struct {
	Email  string
	Status string
}

// Normalize extracts the email and status from p using the given chains.
// It returns ErrMissingData if either cannot be resolved.
func Normalize(p RawPayload, emailChain, statusChain Chain) (Event, error) {
	email, ok := emailChain.Resolve(p)
	if !ok {
		return Event{}, ErrMissingData
	}
	status, ok := statusChain.Resolve(p)
	if !ok {
		return Event{}, ErrMissingData
	}
	return Event{Email: email, Status: status}, nil
}
