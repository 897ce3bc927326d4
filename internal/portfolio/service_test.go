package portfolio_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/subx/internal/portfolio"
)

func TestService_ApplyPurchase(t *testing.T) {
	type testCase struct {
		name      string
		userID    string
		sqm       int
		amount    decimal.Decimal
		setupMock func(m *portfolio.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "Success",
			userID: "u1",
			sqm:    5,
			amount: decimal.RequireFromString("25000.004"),
			setupMock: func(m *portfolio.MockRepository) {
				m.EXPECT().
					IncrementPortfolio(gomock.Any(), "u1", 5, decimal.RequireFromString("25000.00")).
					Return(nil)
			},
		},
		{name: "EmptyUser", userID: " ", sqm: 5, amount: decimal.NewFromInt(1), wantErr: true},
		{name: "ZeroSqm", userID: "u1", sqm: 0, amount: decimal.NewFromInt(1), wantErr: true},
		{
			name:   "RepoError",
			userID: "u1",
			sqm:    1,
			amount: decimal.NewFromInt(1),
			setupMock: func(m *portfolio.MockRepository) {
				m.EXPECT().IncrementPortfolio(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := portfolio.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			err := portfolio.NewService(repo).ApplyPurchase(context.Background(), tt.userID, tt.sqm, tt.amount)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Get_MissingIsEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := portfolio.NewMockRepository(ctrl)
	repo.EXPECT().GetPortfolio(gomock.Any(), "u2").Return(nil, portfolio.ErrNotFound)

	agg, err := portfolio.NewService(repo).Get(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "u2", agg.UserID)
	assert.True(t, agg.IsZero())
}

func TestAggregate_Equal(t *testing.T) {
	a := &portfolio.Aggregate{UserID: "u", TotalSqm: 5, TotalPlots: 1, PortfolioValue: decimal.RequireFromString("25000")}
	b := &portfolio.Aggregate{UserID: "u", TotalSqm: 5, TotalPlots: 1, PortfolioValue: decimal.RequireFromString("25000.00")}

	assert.True(t, a.Equal(b))

	b.TotalPlots = 2
	assert.False(t, a.Equal(b))
}
