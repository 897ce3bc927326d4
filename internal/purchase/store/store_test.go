package store_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	plotstore "github.com/MrJamesThe3rd/subx/internal/plot/store"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	portfoliostore "github.com/MrJamesThe3rd/subx/internal/portfolio/store"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	"github.com/MrJamesThe3rd/subx/internal/purchase/store"
	"github.com/MrJamesThe3rd/subx/internal/testutil"
)

type fixture struct {
	svc       *purchase.Service
	plots     *plot.Service
	portfolio *portfolio.Service
	store     *store.Store
	clock     *clock.Manual
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	tx := database.NewTransactor(db)

	refs, err := purchase.NewSnowflakeReferences(1)
	require.NoError(t, err)

	f := &fixture{
		plots:     plot.NewService(plotstore.New(db), tx),
		portfolio: portfolio.NewService(portfoliostore.New(db)),
		store:     store.New(db),
		clock:     clock.NewManual(time.Now().UTC().Truncate(time.Second)),
	}

	f.svc, err = purchase.NewService(purchase.ServiceConfig{
		Repository:      f.store,
		Transactor:      tx,
		Inventory:       f.plots,
		Portfolios:      f.portfolio,
		Payments:        payment.NewSandbox("http://localhost/checkout"),
		References:      refs,
		Clock:           f.clock,
		ReservationTTL:  30 * time.Minute,
		AmountTolerance: decimal.RequireFromString("0.01"),
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) createPlot(t *testing.T, total int) *plot.Plot {
	t.Helper()

	p, err := f.plots.Create(context.Background(), plot.CreateParams{
		Name:        "plot-" + uuid.NewString()[:8],
		TotalSqm:    total,
		PricePerSqm: decimal.NewFromInt(5000),
	})
	require.NoError(t, err)

	return p
}

func TestStore_ConcurrentReservationsNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.createPlot(t, 100)

	const buyers = 30

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := range buyers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: uuid.NewString(), Sqm: 7})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()

				return
			}

			if !errors.Is(err, purchase.ErrInsufficientSqmAvailable) {
				t.Errorf("buyer %d: unexpected error: %v", i, err)
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 14, succeeded)

	got, err := f.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100-14*7, got.AvailableSqm)
}

func TestStore_FinalizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.createPlot(t, 100)

	res, err := f.svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "buyer-1", Sqm: 5})
	require.NoError(t, err)
	assert.Equal(t, "25000", res.Reservation.AmountExpected.String())

	ref := res.Reservation.PaymentReference

	first, err := f.svc.Finalize(ctx, ref, decimal.NewFromInt(25000))
	require.NoError(t, err)
	assert.False(t, first.AlreadyFinalized)
	assert.Equal(t, "5", first.Ownership.Percentage.String())

	second, err := f.svc.Finalize(ctx, ref, decimal.NewFromInt(25000))
	require.NoError(t, err)
	assert.True(t, second.AlreadyFinalized)
	assert.Equal(t, first.Ownership.ID, second.Ownership.ID)

	owned, err := f.svc.ListOwnerships(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	agg, err := f.portfolio.Get(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, 5, agg.TotalSqm)
	assert.Equal(t, 1, agg.TotalPlots)
	assert.True(t, decimal.NewFromInt(25000).Equal(agg.PortfolioValue))
}

func TestStore_ExpiryThenLatePayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.createPlot(t, 100)

	res, err := f.svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "buyer-2", Sqm: 10})
	require.NoError(t, err)

	f.clock.Advance(31 * time.Minute)

	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := f.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.AvailableSqm)

	_, err = f.svc.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(50000))
	assert.ErrorIs(t, err, purchase.ErrIntegrityConflict)

	incidents, err := f.svc.ListIncidents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, purchase.IncidentNotReserved, incidents[0].Kind)

	// Retries of the same webhook do not duplicate the incident.
	_, err = f.svc.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(50000))
	assert.ErrorIs(t, err, purchase.ErrIntegrityConflict)

	incidents, err = f.svc.ListIncidents(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, incidents, 1)
}

func TestStore_UpdateReservationStatus_Conditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.createPlot(t, 10)

	res, err := f.svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "buyer-3", Sqm: 1})
	require.NoError(t, err)

	ok, err := f.store.UpdateReservationStatus(ctx, res.Reservation.ID, purchase.StatusReserved, purchase.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.store.UpdateReservationStatus(ctx, res.Reservation.ID, purchase.StatusReserved, purchase.StatusCompleted)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.store.GetReservation(ctx, uuid.New())
	assert.ErrorIs(t, err, purchase.ErrReservationNotFound)
}

func TestStore_ConcurrentFinalizeWritesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.createPlot(t, 100)

	res, err := f.svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: "buyer-race", Sqm: 5})
	require.NoError(t, err)

	const deliveries = 12

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fresh int
		ids   = map[uuid.UUID]struct{}{}
	)

	for range deliveries {
		wg.Go(func() {
			out, err := f.svc.Finalize(ctx, res.Reservation.PaymentReference, decimal.NewFromInt(25000))
			if err != nil {
				t.Errorf("finalize: %v", err)
				return
			}

			mu.Lock()
			defer mu.Unlock()

			if !out.AlreadyFinalized {
				fresh++
			}

			ids[out.Ownership.ID] = struct{}{}
		})
	}

	wg.Wait()

	assert.Equal(t, 1, fresh)
	assert.Len(t, ids, 1)

	owned, err := f.svc.ListOwnerships(ctx, "buyer-race")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	agg, err := f.portfolio.Get(ctx, "buyer-race")
	require.NoError(t, err)
	assert.Equal(t, 5, agg.TotalSqm)
	assert.Equal(t, 1, agg.TotalPlots)

	got, err := f.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, got.AvailableSqm)
}

func TestStore_ExpireStaleRacingFinalize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.createPlot(t, 100)

	const holds = 10

	reservations := make([]*purchase.Reservation, holds)
	for i := range reservations {
		res, err := f.svc.Reserve(ctx, purchase.ReserveParams{PlotID: p.ID, BuyerID: fmt.Sprintf("buyer-%d", i), Sqm: 5})
		require.NoError(t, err)

		reservations[i] = res.Reservation
	}

	f.clock.Advance(31 * time.Minute)

	var (
		wg       sync.WaitGroup
		finalErr = make([]error, holds)
	)

	for range 2 {
		wg.Go(func() {
			if _, err := f.svc.ExpireStale(ctx); err != nil {
				t.Errorf("expire: %v", err)
			}
		})
	}

	for i, r := range reservations {
		wg.Go(func() {
			_, finalErr[i] = f.svc.Finalize(ctx, r.PaymentReference, decimal.NewFromInt(25000))
		})
	}

	wg.Wait()

	completedSqm := 0

	for i, r := range reservations {
		got, err := f.svc.GetReservation(ctx, r.ID)
		require.NoError(t, err)

		owned, err := f.svc.ListOwnerships(ctx, r.BuyerID)
		require.NoError(t, err)

		switch got.Status {
		case purchase.StatusCompleted:
			assert.NoError(t, finalErr[i], r.PaymentReference)
			assert.Len(t, owned, 1)

			completedSqm += r.Sqm
		case purchase.StatusExpired:
			assert.ErrorIs(t, finalErr[i], purchase.ErrIntegrityConflict, r.PaymentReference)
			assert.Empty(t, owned)
		default:
			t.Errorf("%s ended as %s", r.PaymentReference, got.Status)
		}
	}

	plotNow, err := f.plots.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 100-completedSqm, plotNow.AvailableSqm)
}
