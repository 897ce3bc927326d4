package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectPlotColumns = `id, name, total_sqm, available_sqm, price_per_sqm, created_at, updated_at`

func scanPlot(s scanner) (*plot.Plot, error) {
	var p plot.Plot

	if err := s.Scan(
		&p.ID, &p.Name, &p.TotalSqm, &p.AvailableSqm, &p.PricePerSqm, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreatePlot(ctx context.Context, p *plot.Plot) error {
	query := `
		INSERT INTO plots (name, total_sqm, available_sqm, price_per_sqm, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.Name,
		p.TotalSqm,
		p.AvailableSqm,
		p.PricePerSqm,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return plot.ErrDuplicateName
		}

		return fmt.Errorf("creating plot: %w", err)
	}

	return nil
}

func (s *Store) GetPlot(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	query := `SELECT ` + selectPlotColumns + ` FROM plots WHERE id = $1`

	p, err := scanPlot(database.Conn(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, plot.ErrNotFound
		}

		return nil, fmt.Errorf("getting plot: %w", err)
	}

	return p, nil
}

func (s *Store) GetPlotForUpdate(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	query := `SELECT ` + selectPlotColumns + ` FROM plots WHERE id = $1 FOR UPDATE`

	p, err := scanPlot(database.Conn(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, plot.ErrNotFound
		}

		return nil, fmt.Errorf("locking plot: %w", err)
	}

	return p, nil
}

func (s *Store) ListPlots(ctx context.Context) ([]*plot.Plot, error) {
	query := `SELECT ` + selectPlotColumns + ` FROM plots ORDER BY created_at ASC, name ASC`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing plots: %w", err)
	}
	defer rows.Close()

	var plots []*plot.Plot

	for rows.Next() {
		p, err := scanPlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plot: %w", err)
		}

		plots = append(plots, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plot rows: %w", err)
	}

	return plots, nil
}

// AdjustAvailability applies the delta only when the result stays within [0, total_sqm].
// When no row is updated, the plot is re-read to tell a missing plot from a bound violation.
func (s *Store) AdjustAvailability(ctx context.Context, id uuid.UUID, deltaSqm int) (*plot.Plot, error) {
	query := `
		UPDATE plots
		SET available_sqm = available_sqm + $2, updated_at = NOW()
		WHERE id = $1
		  AND available_sqm + $2 >= 0
		  AND available_sqm + $2 <= total_sqm
		RETURNING ` + selectPlotColumns

	conn := database.Conn(ctx, s.db)

	p, err := scanPlot(conn.QueryRowContext(ctx, query, id, deltaSqm))
	if err == nil {
		return p, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjusting plot availability: %w", err)
	}

	if _, err := s.GetPlot(ctx, id); err != nil {
		return nil, err
	}

	if deltaSqm < 0 {
		return nil, plot.ErrInsufficientInventory
	}

	return nil, plot.ErrInventoryOverflow
}
