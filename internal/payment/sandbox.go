package payment

import (
	"context"
	"net/url"
	"strings"
)

// SandboxSecret signs webhooks when PAYMENT_SANDBOX is enabled. It is public, so it
// must never verify payments that move real inventory.
const SandboxSecret = "subx-sandbox-secret"

// Sandbox stands in for the gateway in local environments. It never fails and
// points buyers at a local checkout page keyed by reference.
type Sandbox struct {
	checkoutURL string
}

func NewSandbox(checkoutURL string) *Sandbox {
	return &Sandbox{checkoutURL: strings.TrimRight(checkoutURL, "/")}
}

func (s *Sandbox) Initialize(_ context.Context, req InitializeRequest) (*Authorization, error) {
	return &Authorization{
		AuthorizationURL: s.checkoutURL + "/" + url.PathEscape(req.Reference),
		AccessCode:       "sandbox",
		Reference:        req.Reference,
	}, nil
}
