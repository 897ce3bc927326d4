package purchase_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/events"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	"github.com/MrJamesThe3rd/subx/internal/referral"
	"github.com/MrJamesThe3rd/subx/internal/testutil/memstore"
)

type system struct {
	store     *memstore.Store
	clock     *clock.Manual
	plots     *plot.Service
	portfolio *portfolio.Service
	referrals *referral.Service
	purchases *purchase.Service
}

type counterRefs struct {
	mu sync.Mutex
	n  int
}

func (c *counterRefs) NewReference() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.n++

	return fmt.Sprintf("SUBX-%06d", c.n)
}

func newSystem(t *testing.T) *system {
	t.Helper()

	st := memstore.New()
	clk := clock.NewManual(now)

	sys := &system{
		store:     st,
		clock:     clk,
		plots:     plot.NewService(st, st),
		portfolio: portfolio.NewService(st),
		referrals: referral.NewService(st, st, decimal.RequireFromString("0.05"), clk, nil),
	}

	dispatcher := events.NewInProcess(nil, events.WithRetry(1, 0))
	dispatcher.Subscribe("referral-credit", sys.referrals.HandlePurchaseFinalized)

	svc, err := purchase.NewService(purchase.ServiceConfig{
		Repository:      st,
		Transactor:      st,
		Inventory:       sys.plots,
		Portfolios:      sys.portfolio,
		Payments:        payment.NewSandbox("http://localhost/checkout"),
		Events:          dispatcher,
		References:      &counterRefs{},
		Clock:           clk,
		ReservationTTL:  30 * time.Minute,
		AmountTolerance: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	sys.purchases = svc

	return sys
}

func (s *system) createPlot(t *testing.T, name string, total int, price int64) *plot.Plot {
	t.Helper()

	p, err := s.plots.Create(context.Background(), plot.CreateParams{
		Name: name, TotalSqm: total, PricePerSqm: decimal.NewFromInt(price),
	})
	require.NoError(t, err)

	return p
}

// assertConserved checks available + reserved + completed = total for the plot.
func (s *system) assertConserved(t *testing.T, p *plot.Plot) {
	t.Helper()

	h, err := s.store.LockPlotHoldings(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, h.TotalSqm, h.AvailableSqm+h.ReservedSqm+h.CompletedSqm,
		"available=%d reserved=%d completed=%d", h.AvailableSqm, h.ReservedSqm, h.CompletedSqm)
}

func TestScenario_ReserveAndFinalize(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	p := sys.createPlot(t, "p1", 100, 5000)

	res, err := sys.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u1", Sqm: 5})
	require.NoError(t, err)
	assert.Equal(t, "25000", res.Reservation.AmountExpected.String())
	assert.NotEmpty(t, res.PaymentRedirectURL)

	status, err := sys.plots.Status(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, status.AvailableSqm)

	fin, err := sys.purchases.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(25000))
	require.NoError(t, err)
	assert.Equal(t, "5", fin.Ownership.Percentage.String())

	agg, err := sys.portfolio.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, agg.TotalSqm)
	assert.Equal(t, 1, agg.TotalPlots)
	assert.True(t, decimal.NewFromInt(25000).Equal(agg.PortfolioValue))

	status, err = sys.plots.Status(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, status.AvailableSqm)
	assert.Equal(t, "5", status.SoldPercentage.String())

	sys.assertConserved(t, p)
}

func TestScenario_OversellRejected(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	p := sys.createPlot(t, "p1", 100, 5000)

	_, err := sys.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u1", Sqm: 95})
	require.NoError(t, err)

	_, err = sys.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u2", Sqm: 10})

	var insufficient *purchase.InsufficientSqmError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Requested)
	assert.Equal(t, 5, insufficient.Available)

	got, err := sys.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableSqm)
}

func TestScenario_ExpiryRestoresThenLatePaymentRejected(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	p := sys.createPlot(t, "p1", 100, 5000)

	res, err := sys.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u1", Sqm: 10})
	require.NoError(t, err)

	sys.clock.Advance(31 * time.Minute)

	n, err := sys.purchases.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := sys.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.AvailableSqm)

	_, err = sys.purchases.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(50000))
	assert.ErrorIs(t, err, purchase.ErrIntegrityConflict)
	assert.True(t, purchase.NeedsManualReview(err))

	owned, err := sys.purchases.ListOwnerships(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, owned)

	got, err = sys.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.AvailableSqm)

	sys.assertConserved(t, p)
}

func TestProperty_NoOversellUnderConcurrency(t *testing.T) {
	for _, total := range []int{1, 17, 100} {
		t.Run(fmt.Sprintf("total=%d", total), func(t *testing.T) {
			sys := newSystem(t)
			p := sys.createPlot(t, "p", total, 1000)

			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				granted int
			)

			for i := range 64 {
				wg.Add(1)

				go func() {
					defer wg.Done()

					sqm := 1 + i%7

					_, err := sys.purchases.Reserve(context.Background(), purchase.ReserveParams{
						PlotID: p.ID, BuyerID: fmt.Sprintf("u%d", i), Sqm: sqm,
					})
					if err == nil {
						mu.Lock()
						granted += sqm
						mu.Unlock()

						return
					}

					if !errors.Is(err, purchase.ErrInsufficientSqmAvailable) {
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}

			wg.Wait()

			got, err := sys.plots.Get(context.Background(), p.ID)
			require.NoError(t, err)

			assert.LessOrEqual(t, granted, total)
			assert.Equal(t, total-granted, got.AvailableSqm)
			sys.assertConserved(t, p)
		})
	}
}

func TestProperty_FinalizeIdempotentUnderRetries(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	p := sys.createPlot(t, "p1", 100, 5000)

	_, err := sys.referrals.Register(ctx, "ref", "u1")
	require.NoError(t, err)

	res, err := sys.purchases.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u1", Sqm: 5})
	require.NoError(t, err)

	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := sys.purchases.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(25000))
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	owned, err := sys.purchases.ListOwnerships(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	agg, err := sys.portfolio.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, agg.TotalSqm)
	assert.Equal(t, 1, agg.TotalPlots)

	rewards, err := sys.referrals.ListRewards(ctx, "ref")
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	assert.Equal(t, "1250", rewards[0].Commission.String())

	wallet, err := sys.referrals.Wallet(ctx, "ref")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(1250).Equal(wallet.Balance))
}

func TestProperty_ReferralCreditedOnceUnderConcurrentCalls(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	_, err := sys.referrals.Register(ctx, "ref", "u1")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)

	for range 25 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, ok, err := sys.referrals.CreditReferral(ctx, "u1", "SUBX-42", decimal.NewFromInt(10000))
			assert.NoError(t, err)

			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, created)

	wallet, err := sys.referrals.Wallet(ctx, "ref")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(500).Equal(wallet.Balance))
}

// TestProperty_ConservationUnderRandomOperations interleaves reservations, payments,
// cancellations and expiry sweeps and checks conservation after every step.
func TestProperty_ConservationUnderRandomOperations(t *testing.T) {
	sys := newSystem(t)
	ctx := context.Background()

	p := sys.createPlot(t, "p1", 50, 100)
	rng := rand.New(rand.NewPCG(1, 2))

	var open []*purchase.Reservation

	for step := range 300 {
		switch op := rng.IntN(4); {
		case op == 0 || len(open) == 0:
			res, err := sys.purchases.Reserve(ctx, purchase.ReserveParams{
				PlotID: p.ID, BuyerID: fmt.Sprintf("u%d", rng.IntN(5)), Sqm: 1 + rng.IntN(6),
			})
			if err == nil {
				open = append(open, res.Reservation)
			} else {
				require.ErrorIs(t, err, purchase.ErrInsufficientSqmAvailable, "step %d", step)
			}
		case op == 1:
			r := open[rng.IntN(len(open))]
			_, err := sys.purchases.Finalize(ctx, r.PaymentReference, r.AmountExpected)
			if err != nil {
				require.ErrorIs(t, err, purchase.ErrIntegrityConflict, "step %d", step)
			}
		case op == 2:
			r := open[rng.IntN(len(open))]
			_, err := sys.purchases.Cancel(ctx, r.ID)
			if err != nil {
				require.ErrorIs(t, err, purchase.ErrReservationNotActive, "step %d", step)
			}
		default:
			sys.clock.Advance(time.Duration(rng.IntN(20)) * time.Minute)
			_, err := sys.purchases.ExpireStale(ctx)
			require.NoError(t, err)
		}

		sys.assertConserved(t, p)
	}
}

func TestScenario_FinalizeDoesNotWaitForSubscribers(t *testing.T) {
	st := memstore.New()
	clk := clock.NewManual(now)
	plots := plot.NewService(st, st)

	release := make(chan struct{})
	defer close(release)

	credited := make(chan string, 1)

	subscribers := events.NewInProcess(nil)
	subscribers.Subscribe("stuck", func(ctx context.Context, ev events.PurchaseFinalized) error {
		select {
		case <-release:
		case <-ctx.Done():
		}

		credited <- ev.PaymentReference

		return nil
	})

	dispatch := events.NewAsync(subscribers, 8, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatch.Run(ctx)

	svc, err := purchase.NewService(purchase.ServiceConfig{
		Repository:      st,
		Transactor:      st,
		Inventory:       plots,
		Portfolios:      portfolio.NewService(st),
		Payments:        payment.NewSandbox("http://localhost/checkout"),
		Events:          dispatch,
		References:      &counterRefs{},
		Clock:           clk,
		ReservationTTL:  30 * time.Minute,
		AmountTolerance: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	p, err := plots.Create(ctx, plot.CreateParams{Name: "p1", TotalSqm: 100, PricePerSqm: decimal.NewFromInt(5000)})
	require.NoError(t, err)

	res, err := svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "u1", Sqm: 5})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(25000))
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Finalize waited on a blocked subscriber")
	}

	select {
	case <-credited:
		t.Fatal("subscriber ran before it was released")
	default:
	}

	release <- struct{}{}

	select {
	case ref := <-credited:
		assert.Equal(t, res.Reservation.PaymentReference, ref)
	case <-time.After(time.Second):
		t.Fatal("subscriber never received the event")
	}
}
