package purchase

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidSqm               = errors.New("sqm must be a positive integer")
	ErrInvalidBuyer             = errors.New("buyer id is required")
	ErrInsufficientSqmAvailable = errors.New("insufficient sqm available")
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrReservationNotActive     = errors.New("reservation is no longer active")
	ErrPaymentAmountMismatch    = errors.New("payment amount mismatch")
	ErrIntegrityConflict        = errors.New("payment for a reservation that is not reserved")
	ErrPaymentInitFailed        = errors.New("payment initialization failed")
	ErrOwnershipNotFound        = errors.New("ownership record not found")
)

// InsufficientSqmError carries both sides of a failed capacity check.
type InsufficientSqmError struct {
	Requested int
	Available int
}

func (e *InsufficientSqmError) Error() string {
	return fmt.Sprintf("insufficient sqm available: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientSqmError) Is(target error) bool {
	return target == ErrInsufficientSqmAvailable
}

// IntegrityConflictError is a confirmed payment for an expired or cancelled reservation.
type IntegrityConflictError struct {
	PaymentReference string
	Status           Status
}

func (e *IntegrityConflictError) Error() string {
	return fmt.Sprintf("payment %s confirmed for %s reservation", e.PaymentReference, e.Status)
}

func (e *IntegrityConflictError) Is(target error) bool {
	return target == ErrIntegrityConflict
}

type AmountMismatchError struct {
	PaymentReference string
	Expected         decimal.Decimal
	Confirmed        decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment %s: expected %s, confirmed %s",
		e.PaymentReference, e.Expected.StringFixed(2), e.Confirmed.StringFixed(2))
}

func (e *AmountMismatchError) Is(target error) bool {
	return target == ErrPaymentAmountMismatch
}

// NeedsManualReview reports whether a finalization error is permanent. Such payments are
// recorded as incidents and must not be retried by the gateway.
func NeedsManualReview(err error) bool {
	return errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrIntegrityConflict) ||
		errors.Is(err, ErrPaymentAmountMismatch)
}
