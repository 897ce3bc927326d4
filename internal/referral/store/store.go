package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/referral"
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

const selectRewardColumns = `id, referrer_id, referred_user_id, purchase_reference, commission_amount, status, created_at, paid_at`

func scanReward(s scanner) (*referral.Reward, error) {
	var (
		r      referral.Reward
		status string
		paidAt sql.NullTime
	)

	if err := s.Scan(
		&r.ID, &r.ReferrerID, &r.ReferredUserID, &r.PurchaseReference, &r.Commission, &status, &r.CreatedAt, &paidAt,
	); err != nil {
		return nil, err
	}

	r.Status = referral.RewardStatus(status)

	if paidAt.Valid {
		r.PaidAt = &paidAt.Time
	}

	return &r, nil
}

func (s *Store) CreateLink(ctx context.Context, link *referral.Link) error {
	query := `
		INSERT INTO referrals (referred_user_id, referrer_id, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := database.Conn(ctx, s.db).ExecContext(ctx, query, link.ReferredUserID, link.ReferrerID, link.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return referral.ErrAlreadyReferred
		}

		if database.IsCheckViolation(err) {
			return referral.ErrSelfReferral
		}

		return fmt.Errorf("creating referral link: %w", err)
	}

	return nil
}

func (s *Store) GetReferrer(ctx context.Context, referredUserID string) (string, error) {
	var referrerID string

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT referrer_id FROM referrals WHERE referred_user_id = $1`, referredUserID,
	).Scan(&referrerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("getting referrer: %w", err)
	}

	return referrerID, nil
}

func (s *Store) InsertRewardIfAbsent(ctx context.Context, reward *referral.Reward) (bool, error) {
	query := `
		INSERT INTO referral_rewards (referrer_id, referred_user_id, purchase_reference, commission_amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (referrer_id, purchase_reference) DO NOTHING
		RETURNING id
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		reward.ReferrerID,
		reward.ReferredUserID,
		reward.PurchaseReference,
		reward.Commission,
		reward.Status,
		reward.CreatedAt,
	).Scan(&reward.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("inserting referral reward: %w", err)
	}

	return true, nil
}

func (s *Store) GetReward(ctx context.Context, id uuid.UUID) (*referral.Reward, error) {
	query := `SELECT ` + selectRewardColumns + ` FROM referral_rewards WHERE id = $1 FOR UPDATE`

	r, err := scanReward(database.Conn(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, referral.ErrRewardNotFound
		}

		return nil, fmt.Errorf("getting reward: %w", err)
	}

	return r, nil
}

func (s *Store) ListRewards(ctx context.Context, referrerID string) ([]*referral.Reward, error) {
	query := `SELECT ` + selectRewardColumns + `
		FROM referral_rewards
		WHERE referrer_id = $1
		ORDER BY created_at DESC`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, referrerID)
	if err != nil {
		return nil, fmt.Errorf("listing rewards: %w", err)
	}
	defer rows.Close()

	var rewards []*referral.Reward

	for rows.Next() {
		r, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning reward: %w", err)
		}

		rewards = append(rewards, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reward rows: %w", err)
	}

	return rewards, nil
}

func (s *Store) MarkRewardPaid(ctx context.Context, reward *referral.Reward) (bool, error) {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx, `
		UPDATE referral_rewards
		SET status = $1, paid_at = $2
		WHERE id = $3 AND status = $4`,
		referral.RewardPaid, reward.PaidAt, reward.ID, referral.RewardPending,
	)
	if err != nil {
		return false, fmt.Errorf("marking reward paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("marking reward paid: %w", err)
	}

	return n == 1, nil
}

func (s *Store) AdjustWallet(ctx context.Context, userID string, delta decimal.Decimal) error {
	query := `
		INSERT INTO wallets (user_id, balance, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			balance = wallets.balance + EXCLUDED.balance,
			updated_at = NOW()
	`

	if _, err := database.Conn(ctx, s.db).ExecContext(ctx, query, userID, delta); err != nil {
		return fmt.Errorf("adjusting wallet: %w", err)
	}

	return nil
}

func (s *Store) GetWallet(ctx context.Context, userID string) (*referral.Wallet, error) {
	var w referral.Wallet

	err := database.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT user_id, balance, updated_at FROM wallets WHERE user_id = $1`, userID,
	).Scan(&w.UserID, &w.Balance, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, referral.ErrWalletNotFound
		}

		return nil, fmt.Errorf("getting wallet: %w", err)
	}

	return &w, nil
}
