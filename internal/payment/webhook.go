package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SignatureHeader carries the hex HMAC-SHA512 of the raw request body.
const SignatureHeader = "x-paystack-signature"

// Event is a verified webhook notification.
// Recognized is false for event types that carry nothing to finalize.
type Event struct {
	Type       string
	Reference  string
	Amount     decimal.Decimal
	Currency   string
	Recognized bool
}

type webhookPayload struct {
	Event string `json:"event"`
	Data  struct {
		Reference string       `json:"reference"`
		Amount    *json.Number `json:"amount"`
		Currency  string       `json:"currency"`
	} `json:"data"`
}

type WebhookVerifier struct {
	secret []byte
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Sign returns the signature the gateway would send for body.
func (v *WebhookVerifier) Sign(body []byte) string {
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyAndParse checks the signature over the exact bytes received, in constant time,
// before looking at the payload.
func (v *WebhookVerifier) VerifyAndParse(body []byte, signature string) (*Event, error) {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return nil, ErrInvalidSignature
	}

	mac := hmac.New(sha512.New, v.secret)
	mac.Write(body)

	if !hmac.Equal(got, mac.Sum(nil)) {
		return nil, ErrInvalidSignature
	}

	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	ev := &Event{
		Type:      p.Event,
		Reference: strings.TrimSpace(p.Data.Reference),
		Currency:  p.Data.Currency,
	}

	if ev.Type != EventChargeSuccess {
		return ev, nil
	}

	if ev.Reference == "" {
		return nil, fmt.Errorf("%w: %s without a reference", ErrMalformedPayload, EventChargeSuccess)
	}

	if p.Data.Amount == nil {
		return nil, fmt.Errorf("%w: %s without an amount", ErrMalformedPayload, EventChargeSuccess)
	}

	minor, err := p.Data.Amount.Int64()
	if err != nil {
		return nil, fmt.Errorf("%w: amount %q is not an integer", ErrMalformedPayload, p.Data.Amount.String())
	}

	ev.Amount = FromMinorUnits(minor)
	ev.Recognized = true

	return ev, nil
}
