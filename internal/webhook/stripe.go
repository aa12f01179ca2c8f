package webhook

import (
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// StripeSignatureHeader is the header carrying Stripe's event signature.
const StripeSignatureHeader = "Stripe-Signature"

// VerifyStripeSignature checks a Stripe-Signature header against payload,
// including Stripe's timestamp tolerance.
func VerifyStripeSignature(payload []byte, signature, secret string) error {
	_, err := stripewebhook.ConstructEventWithOptions(payload, signature, secret, stripewebhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	return err
}
