package plot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/subx/internal/plot"
)

func passthroughTx(m *plot.MockTransactor) {
	m.EXPECT().
		WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}).
		AnyTimes()
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    plot.CreateParams
		setupMock func(m *plot.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			params: plot.CreateParams{
				Name:        "p1",
				TotalSqm:    100,
				PricePerSqm: decimal.NewFromInt(5000),
			},
			setupMock: func(m *plot.MockRepository) {
				m.EXPECT().
					CreatePlot(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *plot.Plot) error {
						assert.Equal(t, 100, p.AvailableSqm)
						p.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "ZeroTotal",
			params:  plot.CreateParams{Name: "p1", TotalSqm: 0, PricePerSqm: decimal.NewFromInt(1)},
			wantErr: plot.ErrInvalidPlot,
		},
		{
			name:    "NonPositivePrice",
			params:  plot.CreateParams{Name: "p1", TotalSqm: 10, PricePerSqm: decimal.Zero},
			wantErr: plot.ErrInvalidPlot,
		},
		{
			name:    "PriceRoundsToZero",
			params:  plot.CreateParams{Name: "p1", TotalSqm: 10, PricePerSqm: decimal.RequireFromString("0.004")},
			wantErr: plot.ErrInvalidPlot,
		},
		{
			name:   "PriceRoundedToCents",
			params: plot.CreateParams{Name: "p1", TotalSqm: 10, PricePerSqm: decimal.RequireFromString("0.005")},
			setupMock: func(m *plot.MockRepository) {
				m.EXPECT().
					CreatePlot(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *plot.Plot) error {
						assert.Equal(t, "0.01", p.PricePerSqm.StringFixed(2))
						p.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "MissingName",
			params:  plot.CreateParams{TotalSqm: 10, PricePerSqm: decimal.NewFromInt(1)},
			wantErr: plot.ErrInvalidPlot,
		},
		{
			name:   "DuplicateName",
			params: plot.CreateParams{Name: "p1", TotalSqm: 10, PricePerSqm: decimal.NewFromInt(1)},
			setupMock: func(m *plot.MockRepository) {
				m.EXPECT().CreatePlot(gomock.Any(), gomock.Any()).Return(plot.ErrDuplicateName)
			},
			wantErr: plot.ErrDuplicateName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := plot.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := plot.NewService(repo, plot.NewMockTransactor(ctrl))
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, got.TotalSqm, got.AvailableSqm)
		})
	}
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := plot.NewMockRepository(ctrl)
	tx := plot.NewMockTransactor(ctrl)
	passthroughTx(tx)

	params := []plot.CreateParams{
		{Name: "a", TotalSqm: 10, PricePerSqm: decimal.NewFromInt(100)},
		{Name: "b", TotalSqm: 20, PricePerSqm: decimal.NewFromInt(200)},
	}

	repo.EXPECT().CreatePlot(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	svc := plot.NewService(repo, tx)
	plots, err := svc.CreateBatch(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, plots, 2)
	assert.Equal(t, "b", plots[1].Name)
}

func TestService_CreateBatch_RejectsInvalidBeforeWriting(t *testing.T) {
	ctrl := gomock.NewController(t)

	svc := plot.NewService(plot.NewMockRepository(ctrl), plot.NewMockTransactor(ctrl))
	_, err := svc.CreateBatch(context.Background(), []plot.CreateParams{
		{Name: "a", TotalSqm: 10, PricePerSqm: decimal.NewFromInt(100)},
		{Name: "b", TotalSqm: -1, PricePerSqm: decimal.NewFromInt(100)},
	})
	assert.ErrorIs(t, err, plot.ErrInvalidPlot)
}

func TestService_Status(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		total     int
		available int
		want      string
	}{
		{name: "Untouched", total: 100, available: 100, want: "0"},
		{name: "PartlySold", total: 100, available: 5, want: "95"},
		{name: "Third", total: 3, available: 2, want: "33.33"},
		{name: "SoldOut", total: 100, available: 0, want: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := plot.NewMockRepository(ctrl)

			repo.EXPECT().GetPlot(gomock.Any(), id).Return(&plot.Plot{
				ID:           id,
				TotalSqm:     tt.total,
				AvailableSqm: tt.available,
				PricePerSqm:  decimal.NewFromInt(5000),
			}, nil)

			svc := plot.NewService(repo, plot.NewMockTransactor(ctrl))
			status, err := svc.Status(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status.SoldPercentage.String())
		})
	}
}

func TestService_AdjustAvailability(t *testing.T) {
	id := uuid.New()

	t.Run("ZeroDeltaReads", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := plot.NewMockRepository(ctrl)
		repo.EXPECT().GetPlot(gomock.Any(), id).Return(&plot.Plot{ID: id}, nil)

		svc := plot.NewService(repo, plot.NewMockTransactor(ctrl))
		_, err := svc.AdjustAvailability(context.Background(), id, 0)
		require.NoError(t, err)
	})

	t.Run("PropagatesBoundError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := plot.NewMockRepository(ctrl)
		repo.EXPECT().AdjustAvailability(gomock.Any(), id, -10).Return(nil, plot.ErrInsufficientInventory)

		svc := plot.NewService(repo, plot.NewMockTransactor(ctrl))
		_, err := svc.AdjustAvailability(context.Background(), id, -10)
		assert.True(t, errors.Is(err, plot.ErrInsufficientInventory))
	})
}
