package referral

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/events"
	"github.com/MrJamesThe3rd/subx/internal/logging"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=referral
type Repository interface {
	CreateLink(ctx context.Context, link *Link) error
	// GetReferrer returns "" when the user was not referred.
	GetReferrer(ctx context.Context, referredUserID string) (string, error)
	// InsertRewardIfAbsent reports false when a reward for the same referrer and purchase exists.
	InsertRewardIfAbsent(ctx context.Context, reward *Reward) (bool, error)
	GetReward(ctx context.Context, id uuid.UUID) (*Reward, error)
	ListRewards(ctx context.Context, referrerID string) ([]*Reward, error)
	MarkRewardPaid(ctx context.Context, reward *Reward) (bool, error)
	AdjustWallet(ctx context.Context, userID string, delta decimal.Decimal) error
	GetWallet(ctx context.Context, userID string) (*Wallet, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo   Repository
	tx     Transactor
	rate   decimal.Decimal
	clock  clock.Clock
	logger *zap.Logger
}

func NewService(repo Repository, tx Transactor, rate decimal.Decimal, clk clock.Clock, logger *zap.Logger) *Service {
	if clk == nil {
		clk = clock.NewSystem()
	}

	return &Service{repo: repo, tx: tx, rate: rate, clock: clk, logger: logging.OrNop(logger)}
}

// Commission is the referrer's share of a purchase's gross amount, rounded to two places.
func (s *Service) Commission(purchaseAmount decimal.Decimal) decimal.Decimal {
	return purchaseAmount.Mul(s.rate).Round(2)
}

func (s *Service) Register(ctx context.Context, referrerID, referredUserID string) (*Link, error) {
	referrerID = strings.TrimSpace(referrerID)
	referredUserID = strings.TrimSpace(referredUserID)

	if referrerID == "" || referredUserID == "" {
		return nil, ErrInvalidUser
	}

	if referrerID == referredUserID {
		return nil, ErrSelfReferral
	}

	link := &Link{ReferrerID: referrerID, ReferredUserID: referredUserID, CreatedAt: s.clock.Now()}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// CreditReferral credits the buyer's referrer once per purchase. It is a no-op for buyers
// without a referrer and for purchases already credited, so it is safe to call from
// every retry path. created reports whether this call did the crediting.
func (s *Service) CreditReferral(ctx context.Context, referredUserID, purchaseReference string, purchaseAmount decimal.Decimal) (*Reward, bool, error) {
	var (
		reward  *Reward
		created bool
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		referrerID, err := s.repo.GetReferrer(ctx, referredUserID)
		if err != nil {
			return fmt.Errorf("looking up referrer: %w", err)
		}

		if referrerID == "" {
			return nil
		}

		reward = &Reward{
			ReferrerID:        referrerID,
			ReferredUserID:    referredUserID,
			PurchaseReference: purchaseReference,
			Commission:        s.Commission(purchaseAmount),
			Status:            RewardPending,
			CreatedAt:         s.clock.Now(),
		}

		created, err = s.repo.InsertRewardIfAbsent(ctx, reward)
		if err != nil {
			return fmt.Errorf("inserting reward: %w", err)
		}

		if !created {
			return nil
		}

		if err := s.repo.AdjustWallet(ctx, referrerID, reward.Commission); err != nil {
			return fmt.Errorf("crediting wallet: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("referral reward credited",
			zap.String("referrer_id", reward.ReferrerID),
			zap.String("purchase_reference", purchaseReference),
			zap.String("commission", reward.Commission.StringFixed(2)),
		)
	}

	return reward, created, nil
}

// HandlePurchaseFinalized is the event subscriber for finalized purchases.
func (s *Service) HandlePurchaseFinalized(ctx context.Context, ev events.PurchaseFinalized) error {
	_, _, err := s.CreditReferral(ctx, ev.BuyerID, ev.PaymentReference, ev.Amount)
	return err
}

// MarkPaid records a payout: the reward moves to paid and leaves the wallet balance.
func (s *Service) MarkPaid(ctx context.Context, rewardID uuid.UUID) (*Reward, error) {
	var reward *Reward

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReward(ctx, rewardID)
		if err != nil {
			return err
		}

		if r.Status == RewardPaid {
			return ErrRewardAlreadyPaid
		}

		now := s.clock.Now()
		r.Status = RewardPaid
		r.PaidAt = &now

		ok, err := s.repo.MarkRewardPaid(ctx, r)
		if err != nil {
			return fmt.Errorf("marking reward paid: %w", err)
		}

		if !ok {
			return ErrRewardAlreadyPaid
		}

		if err := s.repo.AdjustWallet(ctx, r.ReferrerID, r.Commission.Neg()); err != nil {
			return fmt.Errorf("debiting wallet: %w", err)
		}

		reward = r

		return nil
	})
	if err != nil {
		return nil, err
	}

	return reward, nil
}

func (s *Service) ListRewards(ctx context.Context, referrerID string) ([]*Reward, error) {
	return s.repo.ListRewards(ctx, referrerID)
}

// Wallet returns the user's balance, zero for users who never earned.
func (s *Service) Wallet(ctx context.Context, userID string) (*Wallet, error) {
	w, err := s.repo.GetWallet(ctx, userID)
	if errors.Is(err, ErrWalletNotFound) {
		return &Wallet{UserID: userID, Balance: decimal.Zero}, nil
	}

	if err != nil {
		return nil, err
	}

	return w, nil
}
