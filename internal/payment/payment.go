package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrGateway          = errors.New("payment gateway error")
)

// EventChargeSuccess is the only gateway event that finalizes a purchase.
const EventChargeSuccess = "charge.success"

type InitializeRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Email       string
	CallbackURL string
	Metadata    map[string]string
}

// Authorization is where the buyer is sent to pay.
type Authorization struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// Initializer opens a transaction with the gateway.
type Initializer interface {
	Initialize(ctx context.Context, req InitializeRequest) (*Authorization, error)
}

var minorUnitsPerMajor = decimal.NewFromInt(100)

// ToMinorUnits converts 5000.50 to 500050.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

// FromMinorUnits converts 500050 to 5000.50.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
