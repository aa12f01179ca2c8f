package webhook

import (
	"crypto/subtle"
	"net/http"
)

// Authenticate reports whether received matches the configured secret.
// An empty secret never authenticates.
func Authenticate(secret, received string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(received)) == 1
}

// AuthResult describes an authentication attempt without exposing secrets.
type AuthResult struct {
	OK               bool
	TokenPresent     bool
	SecretConfigured bool
}

// Token returns the credential presented to p: the token header first,
// then the body token field.
func (p Provider) Token(header http.Header, raw RawPayload) string {
	if p.TokenHeader != "" {
		if v := header.Get(p.TokenHeader); v != "" {
			return v
		}
	}
	if p.TokenField != "" {
		if v, ok := raw.Lookup(p.TokenField); ok {
			return v
		}
	}
	return ""
}

// Authenticate checks a delivery against p. Providers with a signature
// verifier authenticate the raw body; all others compare the shared token.
func (p Provider) Authenticate(header http.Header, body []byte, raw RawPayload) AuthResult {
	if p.Verify != nil {
		sig := header.Get(p.TokenHeader)
		res := AuthResult{TokenPresent: sig != "", SecretConfigured: p.Secret != ""}
		res.OK = res.TokenPresent && res.SecretConfigured && p.Verify(body, sig, p.Secret) == nil
		return res
	}

	token := p.Token(header, raw)
	return AuthResult{
		OK:               Authenticate(p.Secret, token),
		TokenPresent:     token != "",
		SecretConfigured: p.Secret != "",
	}
}
