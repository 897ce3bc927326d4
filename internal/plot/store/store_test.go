package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	"github.com/MrJamesThe3rd/subx/internal/plot/store"
	"github.com/MrJamesThe3rd/subx/internal/testutil"
)

func newPlot(t *testing.T, s *store.Store, total int) *plot.Plot {
	t.Helper()

	p := &plot.Plot{
		Name:         "plot-" + uuid.NewString()[:8],
		TotalSqm:     total,
		AvailableSqm: total,
		PricePerSqm:  decimal.NewFromInt(5000),
	}
	require.NoError(t, s.CreatePlot(context.Background(), p))

	return p
}

func TestStore_AdjustAvailability(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	p := newPlot(t, s, 100)

	got, err := s.AdjustAvailability(ctx, p.ID, -95)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableSqm)

	_, err = s.AdjustAvailability(ctx, p.ID, -10)
	assert.ErrorIs(t, err, plot.ErrInsufficientInventory)

	_, err = s.AdjustAvailability(ctx, p.ID, 96)
	assert.ErrorIs(t, err, plot.ErrInventoryOverflow)

	_, err = s.AdjustAvailability(ctx, uuid.New(), -1)
	assert.ErrorIs(t, err, plot.ErrNotFound)

	got, err = s.GetPlot(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.AvailableSqm)
	assert.True(t, decimal.NewFromInt(5000).Equal(got.PricePerSqm))
}

func TestStore_RollbackRestoresAvailability(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := store.New(db)
	tx := database.NewTransactor(db)
	ctx := context.Background()

	p := newPlot(t, s, 50)

	err := tx.WithTx(ctx, func(ctx context.Context) error {
		locked, err := s.GetPlotForUpdate(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, locked.AvailableSqm)

		_, err = s.AdjustAvailability(ctx, p.ID, -20)
		require.NoError(t, err)

		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := s.GetPlot(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.AvailableSqm)
}

func TestStore_DuplicateName(t *testing.T) {
	db := testutil.NewTestDB(t)
	s := store.New(db)

	p := newPlot(t, s, 10)

	err := s.CreatePlot(context.Background(), &plot.Plot{
		Name: p.Name, TotalSqm: 10, AvailableSqm: 10, PricePerSqm: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, plot.ErrDuplicateName)

	plots, err := s.ListPlots(context.Background())
	require.NoError(t, err)
	assert.Len(t, plots, 1)
}
