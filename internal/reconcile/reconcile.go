package reconcile

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrAlreadyRunning = errors.New("reconciliation already running")

type Kind string

const (
	KindPlotAvailability      Kind = "plot_availability"
	KindPortfolioMissing      Kind = "portfolio_missing"
	KindPortfolioMismatch     Kind = "portfolio_mismatch"
	KindPortfolioStale        Kind = "portfolio_stale"
	KindMissingReferralReward Kind = "missing_referral_reward"
)

type Action string

const (
	ActionManualReview Action = "manual_review"
	ActionAutoFixed    Action = "auto_fixed"
	ActionFixFailed    Action = "fix_failed"
)

type Discrepancy struct {
	Kind     Kind   `json:"kind"`
	Subject  string `json:"subject"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Action   Action `json:"action"`
}

type Report struct {
	ID                uuid.UUID     `json:"id"`
	StartedAt         time.Time     `json:"startedAt"`
	FinishedAt        time.Time     `json:"finishedAt"`
	PlotsChecked      int           `json:"plotsChecked"`
	UsersChecked      int           `json:"usersChecked"`
	Discrepancies     []Discrepancy `json:"discrepancies"`
	AutoFixed         int           `json:"autoFixed"`
	ManualReview      int           `json:"manualReview"`
	ReferralsRepaired int           `json:"referralsRepaired"`
	Errors            []string      `json:"errors,omitempty"`
}

func (r *Report) add(d Discrepancy) {
	r.Discrepancies = append(r.Discrepancies, d)

	switch d.Action {
	case ActionAutoFixed:
		r.AutoFixed++
	case ActionManualReview:
		r.ManualReview++
	}
}

// Clean reports whether the run found nothing to fix or review.
func (r *Report) Clean() bool {
	return len(r.Discrepancies) == 0 && len(r.Errors) == 0
}

// PlotHoldings is a plot's inventory next to the sqm its reservations account for.
type PlotHoldings struct {
	PlotID       uuid.UUID
	Name         string
	TotalSqm     int
	AvailableSqm int
	ReservedSqm  int
	CompletedSqm int
}

// ExpectedAvailable counts open holds as taken, so in-flight purchases are not drift.
func (h *PlotHoldings) ExpectedAvailable() int {
	return h.TotalSqm - h.CompletedSqm - h.ReservedSqm
}

// OwnerTotal is a user's portfolio recomputed from ownership records.
type OwnerTotal struct {
	OwnerID    string
	TotalSqm   int
	Ownerships int
	Value      decimal.Decimal
}

// UnrewardedPurchase is a completed purchase by a referred buyer with no reward on record.
type UnrewardedPurchase struct {
	PaymentReference string
	BuyerID          string
	Amount           decimal.Decimal
}
