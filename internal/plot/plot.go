package plot

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound              = errors.New("plot not found")
	ErrDuplicateName         = errors.New("plot name already exists")
	ErrInvalidPlot           = errors.New("invalid plot")
	ErrInsufficientInventory = errors.New("insufficient sqm available")
	ErrInventoryOverflow     = errors.New("available sqm would exceed total sqm")
)

var hundred = decimal.NewFromInt(100)

// Plot is a parcel of land sold in square-meter shares.
// TotalSqm never changes after creation; AvailableSqm stays within [0, TotalSqm].
type Plot struct {
	ID           uuid.UUID
	Name         string
	TotalSqm     int
	AvailableSqm int
	PricePerSqm  decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SoldSqm counts sqm that are held by reservations or owned.
func (p *Plot) SoldSqm() int {
	return p.TotalSqm - p.AvailableSqm
}

// SoldPercentage is the share of the plot no longer available, rounded to two places.
func (p *Plot) SoldPercentage() decimal.Decimal {
	if p.TotalSqm == 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(int64(p.SoldSqm())).
		Div(decimal.NewFromInt(int64(p.TotalSqm))).
		Mul(hundred).
		Round(2)
}

// Status is the public inventory view of a plot.
type Status struct {
	PlotID         uuid.UUID
	Name           string
	TotalSqm       int
	AvailableSqm   int
	SoldPercentage decimal.Decimal
}

type CreateParams struct {
	Name        string
	TotalSqm    int
	PricePerSqm decimal.Decimal
}

// price is the stored price: money is kept to two decimal places.
func (p CreateParams) price() decimal.Decimal {
	return p.PricePerSqm.Round(2)
}

func (p CreateParams) validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlot)
	}

	if p.TotalSqm <= 0 {
		return fmt.Errorf("%w: total sqm must be positive, got %d", ErrInvalidPlot, p.TotalSqm)
	}

	if !p.price().IsPositive() {
		return fmt.Errorf("%w: price per sqm must be at least 0.01, got %s", ErrInvalidPlot, p.PricePerSqm)
	}

	return nil
}
