package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a reservation. Only reserved moves, and only once:
// to completed by finalization, to expired by the sweeper, or to cancelled.
type Status string

const (
	StatusReserved  Status = "reserved"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Reservation holds sqm of a plot while the buyer pays.
type Reservation struct {
	ID               uuid.UUID
	PlotID           uuid.UUID
	BuyerID          string
	Sqm              int
	AmountExpected   decimal.Decimal
	Status           Status
	PaymentReference string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ExpiresAt        time.Time
}

// HoldsInventory reports whether the reservation's sqm are still counted against the plot.
func (r *Reservation) HoldsInventory() bool {
	return r.Status == StatusReserved || r.Status == StatusCompleted
}

// Ownership is the append-only record of a completed purchase.
type Ownership struct {
	ID               uuid.UUID
	ReservationID    uuid.UUID
	PlotID           uuid.UUID
	OwnerID          string
	Sqm              int
	AmountPaid       decimal.Decimal
	Percentage       decimal.Decimal
	PaymentReference string
	CreatedAt        time.Time
}

var hundred = decimal.NewFromInt(100)

// ownershipPercentage is sqm / totalSqm * 100 with four decimal places.
func ownershipPercentage(sqm, totalSqm int) decimal.Decimal {
	return decimal.NewFromInt(int64(sqm)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(totalSqm)), 4)
}

type FinalizationResult struct {
	Reservation      *Reservation
	Ownership        *Ownership
	AlreadyFinalized bool
}

type IncidentKind string

const (
	IncidentReservationNotFound IncidentKind = "reservation_not_found"
	IncidentNotReserved         IncidentKind = "reservation_not_reserved"
	IncidentAmountMismatch      IncidentKind = "amount_mismatch"
)

// Incident is a payment that needs manual review. (PaymentReference, Kind) is unique,
// so gateway retries do not pile up duplicates.
type Incident struct {
	ID               uuid.UUID
	PaymentReference string
	Kind             IncidentKind
	Detail           string
	CreatedAt        time.Time
}
