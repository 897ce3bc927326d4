package reconcile_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
	"github.com/MrJamesThe3rd/subx/internal/referral"
	"github.com/MrJamesThe3rd/subx/internal/testutil/memstore"
)

type fixture struct {
	store     *memstore.Store
	plots     *plot.Service
	portfolio *portfolio.Service
	referrals *referral.Service
	purchases *purchase.Service
	job       *reconcile.Job
}

type seqRefs struct{ n int }

func (s *seqRefs) NewReference() string {
	s.n++
	return "SUBX-" + strconv.Itoa(s.n)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := memstore.New()
	clk := clock.NewManual(time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC))

	f := &fixture{
		store:     st,
		plots:     plot.NewService(st, st),
		portfolio: portfolio.NewService(st),
		referrals: referral.NewService(st, st, decimal.RequireFromString("0.05"), clk, nil),
	}

	// No dispatcher: referral credits only happen through reconciliation.
	svc, err := purchase.NewService(purchase.ServiceConfig{
		Repository:      st,
		Transactor:      st,
		Inventory:       f.plots,
		Portfolios:      f.portfolio,
		Payments:        payment.NewSandbox("http://localhost/checkout"),
		References:      &seqRefs{},
		Clock:           clk,
		AmountTolerance: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	f.purchases = svc
	f.job = reconcile.NewJob(st, st, f.portfolio, f.referrals, clk, nil)

	return f
}

func (f *fixture) buy(t *testing.T, plotID uuid.UUID, buyer string, sqm int) *purchase.FinalizationResult {
	t.Helper()

	ctx := context.Background()

	res, err := f.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: plotID, BuyerID: buyer, Sqm: sqm})
	require.NoError(t, err)

	fin, err := f.purchases.Finalize(ctx, res.Reservation.PaymentReference, res.Reservation.AmountExpected)
	require.NoError(t, err)

	return fin
}

func TestJob_RestoresCorruptedAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.plots.Create(ctx, plot.CreateParams{Name: "p1", TotalSqm: 100, PricePerSqm: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	f.buy(t, p.ID, "u1", 5)
	f.buy(t, p.ID, "u1", 3)

	// An open hold is not drift.
	_, err = f.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u2", Sqm: 4})
	require.NoError(t, err)

	f.store.Corrupt(func(_ map[uuid.UUID]plot.Plot, portfolios map[string]portfolio.Aggregate) {
		agg := portfolios["u1"]
		agg.TotalSqm = 999
		portfolios["u1"] = agg

		portfolios["ghost"] = portfolio.Aggregate{UserID: "ghost", TotalSqm: 7, TotalPlots: 1, PortfolioValue: decimal.NewFromInt(7)}
	})

	report, err := f.job.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.PlotsChecked)
	assert.Equal(t, 2, report.AutoFixed)
	assert.Zero(t, report.ManualReview)

	agg, err := f.portfolio.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, agg.TotalSqm)
	assert.Equal(t, 2, agg.TotalPlots)
	assert.True(t, decimal.NewFromInt(40000).Equal(agg.PortfolioValue))

	ghost, err := f.portfolio.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.True(t, ghost.IsZero())

	again, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.True(t, again.Clean())

	reports, err := f.job.Reports(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestJob_ReportsInventoryDriftWithoutFixing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.plots.Create(ctx, plot.CreateParams{Name: "p1", TotalSqm: 100, PricePerSqm: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	f.buy(t, p.ID, "u1", 5)

	f.store.Corrupt(func(plots map[uuid.UUID]plot.Plot, _ map[string]portfolio.Aggregate) {
		drifted := plots[p.ID]
		drifted.AvailableSqm = 100
		plots[p.ID] = drifted
	})

	report, err := f.job.Run(ctx)
	require.NoError(t, err)

	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, reconcile.KindPlotAvailability, report.Discrepancies[0].Kind)
	assert.Equal(t, 1, report.ManualReview)

	got, err := f.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.AvailableSqm)
}

func TestJob_RepairsMissingReferralReward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.plots.Create(ctx, plot.CreateParams{Name: "p1", TotalSqm: 100, PricePerSqm: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	_, err = f.referrals.Register(ctx, "ref", "u1")
	require.NoError(t, err)

	f.buy(t, p.ID, "u1", 5)

	report, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ReferralsRepaired)

	wallet, err := f.referrals.Wallet(ctx, "ref")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1250).Equal(wallet.Balance))

	again, err := f.job.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.ReferralsRepaired)
}
