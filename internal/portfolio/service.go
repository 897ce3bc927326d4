package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=portfolio
type Repository interface {
	// IncrementPortfolio adds to the user's aggregate, creating it when missing.
	IncrementPortfolio(ctx context.Context, userID string, sqm int, value decimal.Decimal) error
	GetPortfolio(ctx context.Context, userID string) (*Aggregate, error)
	ListPortfolios(ctx context.Context) ([]*Aggregate, error)
	UpsertPortfolio(ctx context.Context, agg *Aggregate) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ApplyPurchase folds one finalized purchase into the buyer's aggregate.
// It runs inside the finalization transaction carried by ctx.
func (s *Service) ApplyPurchase(ctx context.Context, userID string, sqm int, amountPaid decimal.Decimal) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}

	if sqm <= 0 {
		return fmt.Errorf("applying purchase: sqm must be positive, got %d", sqm)
	}

	if err := s.repo.IncrementPortfolio(ctx, userID, sqm, amountPaid.Round(2)); err != nil {
		return fmt.Errorf("applying purchase to portfolio: %w", err)
	}

	return nil
}

// Get returns the user's aggregate, or an empty one for users who never bought.
func (s *Service) Get(ctx context.Context, userID string) (*Aggregate, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}

	agg, err := s.repo.GetPortfolio(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Aggregate{UserID: userID, PortfolioValue: decimal.Zero}, nil
	}

	if err != nil {
		return nil, err
	}

	return agg, nil
}

func (s *Service) List(ctx context.Context) ([]*Aggregate, error) {
	return s.repo.ListPortfolios(ctx)
}

// Overwrite replaces the stored aggregate with a recomputed one.
func (s *Service) Overwrite(ctx context.Context, agg *Aggregate) error {
	if strings.TrimSpace(agg.UserID) == "" {
		return ErrInvalidUser
	}

	agg.PortfolioValue = agg.PortfolioValue.Round(2)

	if err := s.repo.UpsertPortfolio(ctx, agg); err != nil {
		return fmt.Errorf("overwriting portfolio: %w", err)
	}

	return nil
}
