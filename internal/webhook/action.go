package webhook

// Action is the store mutation implied by a payment status.
type Action string

// Actions.
const (
	ActionActivate Action = "activate"
	ActionRevoke   Action = "revoke"
	ActionIgnore   Action = "ignore"
)

type statusSet map[string]struct{}

func newStatusSet(statuses ...string) statusSet {
	s := make(statusSet, len(statuses))
	for _, st := range statuses {
		s[st] = struct{}{}
	}
	return s
}

// Contains reports whether status is in the set. Matching is exact.
func (s statusSet) Contains(status string) bool {
	_, ok := s[status]
	return ok
}

// ActivateStatuses are statuses that grant a license.
var ActivateStatuses = newStatusSet(
	"paid",
	"approved",
	"completed",
	"order_approved",
	"APPROVED",
	"COMPLETE",
	"PURCHASE_APPROVED",
	"PURCHASE_COMPLETE",
	"checkout.session.completed",
	"invoice.paid",
)

// RevokeStatuses are statuses that remove a license.
var RevokeStatuses = newStatusSet(
	"refunded",
	"chargeback",
	"chargedback",
	"canceled",
	"cancelled",
	"order_refunded",
	"subscription_canceled",
	"REFUNDED",
	"CHARGEBACK",
	"CANCELLED",
	"PURCHASE_REFUNDED",
	"PURCHASE_CHARGEBACK",
	"PURCHASE_CANCELED",
	"SUBSCRIPTION_CANCELLATION",
	"charge.refunded",
	"customer.subscription.deleted",
)

// Resolve classifies status. Unknown statuses are ignored, not rejected.
func Resolve(status string) Action {
	switch {
	case ActivateStatuses.Contains(status):
		return ActionActivate
	case RevokeStatuses.Contains(status):
		return ActionRevoke
	default:
		return ActionIgnore
	}
}
