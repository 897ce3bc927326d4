package referral

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrSelfReferral      = errors.New("users cannot refer themselves")
	ErrAlreadyReferred   = errors.New("user already has a referrer")
	ErrInvalidUser       = errors.New("user id is required")
	ErrRewardNotFound    = errors.New("referral reward not found")
	ErrRewardAlreadyPaid = errors.New("referral reward already paid")
	ErrWalletNotFound    = errors.New("wallet not found")
)

type RewardStatus string

const (
	// RewardPending means the commission sits in the referrer's wallet awaiting payout.
	RewardPending RewardStatus = "pending"
	RewardPaid    RewardStatus = "paid"
)

// Link records who referred a user. Each user has at most one referrer.
type Link struct {
	ReferrerID     string
	ReferredUserID string
	CreatedAt      time.Time
}

// Reward is the commission earned by a referrer on one purchase.
// (ReferrerID, PurchaseReference) is unique.
type Reward struct {
	ID                uuid.UUID
	ReferrerID        string
	ReferredUserID    string
	PurchaseReference string
	Commission        decimal.Decimal
	Status            RewardStatus
	CreatedAt         time.Time
	PaidAt            *time.Time
}

type Wallet struct {
	UserID    string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}
