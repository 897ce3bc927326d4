package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ListPlotIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, `SELECT id FROM plots ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing plot ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning plot id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plot ids: %w", err)
	}

	return ids, nil
}

func (s *Store) LockPlotHoldings(ctx context.Context, plotID uuid.UUID) (*reconcile.PlotHoldings, error) {
	conn := database.Conn(ctx, s.db)

	h := reconcile.PlotHoldings{PlotID: plotID}

	err := conn.QueryRowContext(ctx,
		`SELECT name, total_sqm, available_sqm FROM plots WHERE id = $1 FOR UPDATE`, plotID,
	).Scan(&h.Name, &h.TotalSqm, &h.AvailableSqm)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plot %s vanished during reconciliation", plotID)
		}

		return nil, fmt.Errorf("locking plot: %w", err)
	}

	query := `
		SELECT
			COALESCE((SELECT SUM(sqm_requested) FROM reservations WHERE plot_id = $1 AND status = 'reserved'), 0),
			COALESCE((SELECT SUM(sqm_owned) FROM ownerships WHERE plot_id = $1), 0)
	`

	if err := conn.QueryRowContext(ctx, query, plotID).Scan(&h.ReservedSqm, &h.CompletedSqm); err != nil {
		return nil, fmt.Errorf("summing plot holdings: %w", err)
	}

	return &h, nil
}

const ownerTotalsQuery = `
	SELECT owner_id, SUM(sqm_owned), COUNT(*), SUM(amount_paid)
	FROM ownerships
`

func (s *Store) OwnerTotals(ctx context.Context) ([]*reconcile.OwnerTotal, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, ownerTotalsQuery+` GROUP BY owner_id ORDER BY owner_id`)
	if err != nil {
		return nil, fmt.Errorf("summing ownerships: %w", err)
	}
	defer rows.Close()

	var totals []*reconcile.OwnerTotal

	for rows.Next() {
		var t reconcile.OwnerTotal
		if err := rows.Scan(&t.OwnerID, &t.TotalSqm, &t.Ownerships, &t.Value); err != nil {
			return nil, fmt.Errorf("scanning owner total: %w", err)
		}

		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating owner totals: %w", err)
	}

	return totals, nil
}

func (s *Store) OwnerTotal(ctx context.Context, ownerID string) (*reconcile.OwnerTotal, error) {
	t := reconcile.OwnerTotal{OwnerID: ownerID, Value: decimal.Zero}

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		ownerTotalsQuery+` WHERE owner_id = $1 GROUP BY owner_id`, ownerID,
	).Scan(&t.OwnerID, &t.TotalSqm, &t.Ownerships, &t.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return &t, nil
	}

	if err != nil {
		return nil, fmt.Errorf("summing ownerships for %s: %w", ownerID, err)
	}

	return &t, nil
}

func (s *Store) LockPortfolio(ctx context.Context, userID string) error {
	var one int

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT 1 FROM portfolios WHERE user_id = $1 FOR UPDATE`, userID,
	).Scan(&one)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("locking portfolio: %w", err)
	}

	return nil
}

// UnrewardedPurchases only considers purchases made after the referral was registered.
func (s *Store) UnrewardedPurchases(ctx context.Context, limit int) ([]*reconcile.UnrewardedPurchase, error) {
	query := `
		SELECT o.payment_reference, o.owner_id, o.amount_paid
		FROM ownerships o
		JOIN referrals r ON r.referred_user_id = o.owner_id AND r.created_at <= o.created_at
		LEFT JOIN referral_rewards rw
			ON rw.referrer_id = r.referrer_id AND rw.purchase_reference = o.payment_reference
		WHERE rw.id IS NULL
		ORDER BY o.created_at ASC
		LIMIT $1
	`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unrewarded purchases: %w", err)
	}
	defer rows.Close()

	var purchases []*reconcile.UnrewardedPurchase

	for rows.Next() {
		var p reconcile.UnrewardedPurchase
		if err := rows.Scan(&p.PaymentReference, &p.BuyerID, &p.Amount); err != nil {
			return nil, fmt.Errorf("scanning unrewarded purchase: %w", err)
		}

		purchases = append(purchases, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating unrewarded purchases: %w", err)
	}

	return purchases, nil
}

func (s *Store) SaveReport(ctx context.Context, report *reconcile.Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	_, err = database.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO reconciliation_reports (id, started_at, finished_at, report) VALUES ($1, $2, $3, $4)`,
		report.ID, report.StartedAt, report.FinishedAt, body,
	)
	if err != nil {
		return fmt.Errorf("saving report: %w", err)
	}

	return nil
}

func (s *Store) ListReports(ctx context.Context, limit int) ([]*reconcile.Report, error) {
	rows, err := database.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT report FROM reconciliation_reports ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var reports []*reconcile.Report

	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning report: %w", err)
		}

		var r reconcile.Report
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, fmt.Errorf("decoding report: %w", err)
		}

		reports = append(reports, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reports: %w", err)
	}

	return reports, nil
}
