package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RoutingKeyPurchaseFinalized is the routing key on the purchases exchange.
const RoutingKeyPurchaseFinalized = "purchase.finalized"

// PurchaseFinalized is emitted once per reservation, after the finalization commit.
type PurchaseFinalized struct {
	PaymentReference string          `json:"paymentReference"`
	ReservationID    uuid.UUID       `json:"reservationId"`
	OwnershipID      uuid.UUID       `json:"ownershipId"`
	PlotID           uuid.UUID       `json:"plotId"`
	BuyerID          string          `json:"buyerId"`
	Sqm              int             `json:"sqm"`
	Amount           decimal.Decimal `json:"amount"`
	FinalizedAt      time.Time       `json:"finalizedAt"`
}

// PurchaseHandler reacts to a finalized purchase. Handlers may see the same event
// more than once and must be idempotent.
type PurchaseHandler func(ctx context.Context, ev PurchaseFinalized) error
