// Package webhook authenticates and normalizes inbound payment-platform
// webhooks and maps their statuses to license actions.
package webhook

import "sort"

// Built-in provider names.
const (
	ProviderDefault = "default"
	ProviderHotmart = "hotmart"
	ProviderKiwify  = "kiwify"
	ProviderStripe  = "stripe"
)

// VerifyFunc checks a signed body against a signature header value.
type VerifyFunc func(payload []byte, signature, secret string) error

// Provider describes how one payment platform delivers webhooks.
type Provider struct {
	Name string

	// TokenHeader carries the shared token, or the signature when Verify is set.
	TokenHeader string
	// TokenField is the body fallback for the shared token.
	TokenField Field
	Secret     string
	Verify     VerifyFunc

	EmailChain  Chain
	StatusChain Chain
}

// Normalize extracts the provider's event from raw.
func (p Provider) Normalize(raw RawPayload) (Event, error) {
	return Normalize(raw, p.EmailChain, p.StatusChain)
}

// Secrets holds the credentials used by the built-in providers.
type Secrets struct {
	// Shared authenticates token-based providers.
	Shared string
	// Stripe is the Stripe endpoint signing secret.
	Stripe string
}

func prepend(prefix Chain, base Chain) Chain {
	out := make(Chain, 0, len(prefix)+len(base))
	out = append(out, prefix...)
	return append(out, base...)
}

// DefaultProvider accepts the generic payload shape.
func DefaultProvider(secret string) Provider {
	return Provider{
		Name:        ProviderDefault,
		TokenHeader: "X-Webhook-Token",
		TokenField:  "token",
		Secret:      secret,
		EmailChain:  DefaultEmailChain,
		StatusChain: DefaultStatusChain,
	}
}

// HotmartProvider accepts Hotmart postbacks.
func HotmartProvider(secret string) Provider {
	return Provider{
		Name:        ProviderHotmart,
		TokenHeader: "X-Hotmart-Hottok",
		TokenField:  "hottok",
		Secret:      secret,
		EmailChain:  prepend(Chain{"data.buyer.email"}, DefaultEmailChain),
		StatusChain: prepend(Chain{"event", "data.purchase.status"}, DefaultStatusChain),
	}
}

// KiwifyProvider accepts Kiwify order webhooks.
func KiwifyProvider(secret string) Provider {
	return Provider{
		Name:        ProviderKiwify,
		TokenHeader: "X-Kiwify-Token",
		TokenField:  "token",
		Secret:      secret,
		EmailChain:  prepend(Chain{"Customer.email"}, DefaultEmailChain),
		StatusChain: prepend(Chain{"order_status", "webhook_event_type"}, DefaultStatusChain),
	}
}

// StripeProvider accepts signed Stripe events.
func StripeProvider(secret string) Provider {
	return Provider{
		Name:        ProviderStripe,
		TokenHeader: StripeSignatureHeader,
		Secret:      secret,
		Verify:      VerifyStripeSignature,
		EmailChain: Chain{
			"data.object.customer_email",
			"data.object.customer_details.email",
			"data.object.email",
		},
		StatusChain: Chain{"type"},
	}
}

// Registry resolves providers by the name used in the webhook URL.
// It is filled before the server starts and only read afterwards, so
// Register must not be called while requests are being served.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a registry holding the built-in providers.
func NewRegistry(secrets Secrets) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	r.Register(DefaultProvider(secrets.Shared))
	r.Register(HotmartProvider(secrets.Shared))
	r.Register(KiwifyProvider(secrets.Shared))
	r.Register(StripeProvider(secrets.Stripe))
	return r
}

// Register adds or replaces a provider.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name] = p
}

// Get returns the provider registered under name, falling back to the
// default provider for unknown names.
func (r *Registry) Get(name string) Provider {
	if p, ok := r.providers[name]; ok {
		return p
	}
	return r.providers[ProviderDefault]
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
