package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
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

const selectReservationColumns = `id, plot_id, buyer_id, sqm_requested, amount_expected, status, payment_reference, created_at, updated_at, expires_at`

func scanReservation(s scanner) (*purchase.Reservation, error) {
	var (
		r      purchase.Reservation
		status string
	)

	if err := s.Scan(
		&r.ID, &r.PlotID, &r.BuyerID, &r.Sqm, &r.AmountExpected, &status,
		&r.PaymentReference, &r.CreatedAt, &r.UpdatedAt, &r.ExpiresAt,
	); err != nil {
		return nil, err
	}

	r.Status = purchase.Status(status)

	return &r, nil
}

const selectOwnershipColumns = `id, reservation_id, plot_id, owner_id, sqm_owned, amount_paid, ownership_percentage, payment_reference, created_at`

func scanOwnership(s scanner) (*purchase.Ownership, error) {
	var o purchase.Ownership

	if err := s.Scan(
		&o.ID, &o.ReservationID, &o.PlotID, &o.OwnerID, &o.Sqm, &o.AmountPaid,
		&o.Percentage, &o.PaymentReference, &o.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &o, nil
}

func (s *Store) CreateReservation(ctx context.Context, r *purchase.Reservation) error {
	query := `
		INSERT INTO reservations (plot_id, buyer_id, sqm_requested, amount_expected, status, payment_reference, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		r.PlotID,
		r.BuyerID,
		r.Sqm,
		r.AmountExpected,
		r.Status,
		r.PaymentReference,
		r.CreatedAt,
		r.UpdatedAt,
		r.ExpiresAt,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("creating reservation: %w", err)
	}

	return nil
}

func (s *Store) getReservation(ctx context.Context, query string, arg any) (*purchase.Reservation, error) {
	r, err := scanReservation(database.Conn(ctx, s.db).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrReservationNotFound
		}

		return nil, fmt.Errorf("getting reservation: %w", err)
	}

	return r, nil
}

func (s *Store) GetReservation(ctx context.Context, id uuid.UUID) (*purchase.Reservation, error) {
	return s.getReservation(ctx, `SELECT `+selectReservationColumns+` FROM reservations WHERE id = $1`, id)
}

func (s *Store) GetReservationForUpdate(ctx context.Context, id uuid.UUID) (*purchase.Reservation, error) {
	return s.getReservation(ctx, `SELECT `+selectReservationColumns+` FROM reservations WHERE id = $1 FOR UPDATE`, id)
}

func (s *Store) GetReservationByReferenceForUpdate(ctx context.Context, reference string) (*purchase.Reservation, error) {
	return s.getReservation(ctx,
		`SELECT `+selectReservationColumns+` FROM reservations WHERE payment_reference = $1 FOR UPDATE`, reference)
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id uuid.UUID, from, to purchase.Status) (bool, error) {
	query := `
		UPDATE reservations
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := database.Conn(ctx, s.db).ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("updating reservation status: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}

	return n == 1, nil
}

func (s *Store) ListExpiredReservations(ctx context.Context, now time.Time, limit int) ([]*purchase.Reservation, error) {
	query := `
		SELECT ` + selectReservationColumns + `
		FROM reservations
		WHERE status = 'reserved' AND expires_at <= $1
		ORDER BY expires_at ASC
		LIMIT $2
	`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("listing expired reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*purchase.Reservation

	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reservation: %w", err)
		}

		reservations = append(reservations, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservation rows: %w", err)
	}

	return reservations, nil
}

func (s *Store) CreateOwnership(ctx context.Context, o *purchase.Ownership) error {
	query := `
		INSERT INTO ownerships (reservation_id, plot_id, owner_id, sqm_owned, amount_paid, ownership_percentage, payment_reference, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		o.ReservationID,
		o.PlotID,
		o.OwnerID,
		o.Sqm,
		o.AmountPaid,
		o.Percentage,
		o.PaymentReference,
		o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("ownership for reservation %s already exists: %w", o.ReservationID, purchase.ErrReservationNotActive)
		}

		return fmt.Errorf("creating ownership: %w", err)
	}

	return nil
}

func (s *Store) GetOwnershipByReservation(ctx context.Context, reservationID uuid.UUID) (*purchase.Ownership, error) {
	query := `SELECT ` + selectOwnershipColumns + ` FROM ownerships WHERE reservation_id = $1`

	o, err := scanOwnership(database.Conn(ctx, s.db).QueryRowContext(ctx, query, reservationID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchase.ErrOwnershipNotFound
		}

		return nil, fmt.Errorf("getting ownership: %w", err)
	}

	return o, nil
}

func (s *Store) ListOwnershipsByOwner(ctx context.Context, ownerID string) ([]*purchase.Ownership, error) {
	query := `SELECT ` + selectOwnershipColumns + ` FROM ownerships WHERE owner_id = $1 ORDER BY created_at ASC`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing ownerships: %w", err)
	}
	defer rows.Close()

	var ownerships []*purchase.Ownership

	for rows.Next() {
		o, err := scanOwnership(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ownership: %w", err)
		}

		ownerships = append(ownerships, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ownership rows: %w", err)
	}

	return ownerships, nil
}

// RecordIncident ignores repeats of the same reference and kind.
func (s *Store) RecordIncident(ctx context.Context, inc *purchase.Incident) error {
	query := `
		INSERT INTO integrity_incidents (payment_reference, kind, detail, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (payment_reference, kind) DO NOTHING
		RETURNING id
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		inc.PaymentReference, inc.Kind, inc.Detail, inc.CreatedAt,
	).Scan(&inc.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("recording incident: %w", err)
	}

	return nil
}

func (s *Store) ListIncidents(ctx context.Context, limit int) ([]*purchase.Incident, error) {
	query := `
		SELECT id, payment_reference, kind, detail, created_at
		FROM integrity_incidents
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*purchase.Incident

	for rows.Next() {
		var (
			inc  purchase.Incident
			kind string
		)

		if err := rows.Scan(&inc.ID, &inc.PaymentReference, &kind, &inc.Detail, &inc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning incident: %w", err)
		}

		inc.Kind = purchase.IncidentKind(kind)
		incidents = append(incidents, &inc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating incident rows: %w", err)
	}

	return incidents, nil
}
