package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectPortfolioColumns = `user_id, total_sqm, total_plots, portfolio_value, updated_at`

func scanAggregate(s scanner) (*portfolio.Aggregate, error) {
	var a portfolio.Aggregate
	if err := s.Scan(&a.UserID, &a.TotalSqm, &a.TotalPlots, &a.PortfolioValue, &a.UpdatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}

func (s *Store) IncrementPortfolio(ctx context.Context, userID string, sqm int, value decimal.Decimal) error {
	query := `
		INSERT INTO portfolios (user_id, total_sqm, total_plots, portfolio_value, updated_at)
		VALUES ($1, $2, 1, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_sqm = portfolios.total_sqm + EXCLUDED.total_sqm,
			total_plots = portfolios.total_plots + 1,
			portfolio_value = portfolios.portfolio_value + EXCLUDED.portfolio_value,
			updated_at = NOW()
	`

	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query, userID, sqm, value); err != nil {
		return fmt.Errorf("incrementing portfolio: %w", err)
	}

	return nil
}

func (s *Store) GetPortfolio(ctx context.Context, userID string) (*portfolio.Aggregate, error) {
	query := `SELECT ` + selectPortfolioColumns + ` FROM portfolios WHERE user_id = $1`

	a, err := scanAggregate(database.Conn(ctx, s.db).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, portfolio.ErrNotFound
		}

		return nil, fmt.Errorf("getting portfolio: %w", err)
	}

	return a, nil
}

func (s *Store) ListPortfolios(ctx context.Context) ([]*portfolio.Aggregate, error) {
	query := `SELECT ` + selectPortfolioColumns + ` FROM portfolios ORDER BY user_id`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing portfolios: %w", err)
	}
	defer rows.Close()

	var aggs []*portfolio.Aggregate

	for rows.Next() {
		a, err := scanAggregate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning portfolio: %w", err)
		}

		aggs = append(aggs, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating portfolio rows: %w", err)
	}

	return aggs, nil
}

func (s *Store) UpsertPortfolio(ctx context.Context, agg *portfolio.Aggregate) error {
	query := `
		INSERT INTO portfolios (user_id, total_sqm, total_plots, portfolio_value, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			total_sqm = EXCLUDED.total_sqm,
			total_plots = EXCLUDED.total_plots,
			portfolio_value = EXCLUDED.portfolio_value,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		agg.UserID, agg.TotalSqm, agg.TotalPlots, agg.PortfolioValue,
	).Scan(&agg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting portfolio: %w", err)
	}

	return nil
}
