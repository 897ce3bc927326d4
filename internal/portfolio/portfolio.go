package portfolio

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("portfolio not found")
	ErrInvalidUser = errors.New("user id is required")
)

// Aggregate is a per-user summary derived from ownership records.
// TotalPlots counts ownership records, so two purchases on the same plot count twice.
type Aggregate struct {
	UserID         string
	TotalSqm       int
	TotalPlots     int
	PortfolioValue decimal.Decimal
	UpdatedAt      time.Time
}

// Equal compares the derived fields, ignoring UpdatedAt.
func (a *Aggregate) Equal(other *Aggregate) bool {
	return a.UserID == other.UserID &&
		a.TotalSqm == other.TotalSqm &&
		a.TotalPlots == other.TotalPlots &&
		a.PortfolioValue.Equal(other.PortfolioValue)
}

func (a *Aggregate) IsZero() bool {
	return a.TotalSqm == 0 && a.TotalPlots == 0 && a.PortfolioValue.IsZero()
}
