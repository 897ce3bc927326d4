package reconcile

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	"github.com/MrJamesThe3rd/subx/internal/referral"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=reconcile
type Repository interface {
	ListPlotIDs(ctx context.Context) ([]uuid.UUID, error)
	// LockPlotHoldings locks the plot row before summing its reservations.
	LockPlotHoldings(ctx context.Context, plotID uuid.UUID) (*PlotHoldings, error)
	OwnerTotals(ctx context.Context) ([]*OwnerTotal, error)
	// OwnerTotal returns a zero total for users without ownership records.
	OwnerTotal(ctx context.Context, ownerID string) (*OwnerTotal, error)
	// LockPortfolio locks the user's aggregate row when it exists.
	LockPortfolio(ctx context.Context, userID string) error
	UnrewardedPurchases(ctx context.Context, limit int) ([]*UnrewardedPurchase, error)
	SaveReport(ctx context.Context, report *Report) error
	ListReports(ctx context.Context, limit int) ([]*Report, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Portfolios is satisfied by *portfolio.Service.
type Portfolios interface {
	Get(ctx context.Context, userID string) (*portfolio.Aggregate, error)
	List(ctx context.Context) ([]*portfolio.Aggregate, error)
	Overwrite(ctx context.Context, agg *portfolio.Aggregate) error
}

// Referrals is satisfied by *referral.Service.
type Referrals interface {
	CreditReferral(ctx context.Context, referredUserID, purchaseReference string, purchaseAmount decimal.Decimal) (*referral.Reward, bool, error)
}

const referralRepairBatch = 1000

type Job struct {
	repo       Repository
	tx         Transactor
	portfolios Portfolios
	referrals  Referrals
	clock      clock.Clock
	logger     *zap.Logger

	running sync.Mutex
}

func NewJob(repo Repository, tx Transactor, portfolios Portfolios, referrals Referrals, clk clock.Clock, logger *zap.Logger) *Job {
	if clk == nil {
		clk = clock.NewSystem()
	}

	return &Job{
		repo:       repo,
		tx:         tx,
		portfolios: portfolios,
		referrals:  referrals,
		clock:      clk,
		logger:     logging.OrNop(logger),
	}
}

// Run audits inventory, portfolios and referral rewards. Plot drift is only reported;
// portfolio aggregates and missing rewards are derived data and get repaired.
// Failures on single subjects are collected in the report instead of aborting the run.
func (j *Job) Run(ctx context.Context) (*Report, error) {
	if !j.running.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer j.running.Unlock()

	report := &Report{StartedAt: j.clock.Now(), Discrepancies: []Discrepancy{}}

	j.logger.Info("reconciliation started")

	if err := j.checkPlots(ctx, report); err != nil {
		return nil, err
	}

	if err := j.checkPortfolios(ctx, report); err != nil {
		return nil, err
	}

	if err := j.repairReferrals(ctx, report); err != nil {
		return nil, err
	}

	report.FinishedAt = j.clock.Now()

	if err := j.repo.SaveReport(ctx, report); err != nil {
		j.logger.Error("saving reconciliation report failed", zap.Error(err))
		report.Errors = append(report.Errors, err.Error())
	}

	j.log(report)

	return report, nil
}

func (j *Job) checkPlots(ctx context.Context, report *Report) error {
	ids, err := j.repo.ListPlotIDs(ctx)
	if err != nil {
		return fmt.Errorf("listing plots: %w", err)
	}

	for _, id := range ids {
		var h *PlotHoldings

		err := j.tx.WithTx(ctx, func(ctx context.Context) error {
			var err error
			h, err = j.repo.LockPlotHoldings(ctx, id)

			return err
		})
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("plot %s: %v", id, err))
			continue
		}

		report.PlotsChecked++

		if expected := h.ExpectedAvailable(); expected != h.AvailableSqm {
			j.logger.Error("plot inventory drift",
				zap.String("plot_id", id.String()),
				zap.String("plot_name", h.Name),
				zap.Int("total_sqm", h.TotalSqm),
				zap.Int("available_sqm", h.AvailableSqm),
				zap.Int("reserved_sqm", h.ReservedSqm),
				zap.Int("completed_sqm", h.CompletedSqm),
				zap.Int("expected_available_sqm", expected),
			)

			report.add(Discrepancy{
				Kind:     KindPlotAvailability,
				Subject:  id.String(),
				Expected: strconv.Itoa(expected),
				Actual:   strconv.Itoa(h.AvailableSqm),
				Action:   ActionManualReview,
			})
		}
	}

	return nil
}

func (j *Job) checkPortfolios(ctx context.Context, report *Report) error {
	totals, err := j.repo.OwnerTotals(ctx)
	if err != nil {
		return fmt.Errorf("summing ownerships: %w", err)
	}

	stored, err := j.portfolios.List(ctx)
	if err != nil {
		return fmt.Errorf("listing portfolios: %w", err)
	}

	byUser := make(map[string]*portfolio.Aggregate, len(stored))
	for _, agg := range stored {
		byUser[agg.UserID] = agg
	}

	seen := make(map[string]struct{}, len(totals))

	for _, t := range totals {
		seen[t.OwnerID] = struct{}{}
		report.UsersChecked++

		current, ok := byUser[t.OwnerID]
		if ok && current.Equal(aggregateFrom(t)) {
			continue
		}

		kind := KindPortfolioMismatch
		if !ok {
			kind = KindPortfolioMissing
		}

		j.repairPortfolio(ctx, report, t.OwnerID, kind)
	}

	for _, agg := range stored {
		if _, ok := seen[agg.UserID]; ok || agg.IsZero() {
			continue
		}

		report.UsersChecked++
		j.repairPortfolio(ctx, report, agg.UserID, KindPortfolioStale)
	}

	return nil
}

// repairPortfolio recomputes one user's aggregate under the aggregate's row lock, so a
// purchase finalized since the snapshot is neither lost nor counted twice.
func (j *Job) repairPortfolio(ctx context.Context, report *Report, userID string, kind Kind) {
	var (
		before, after *portfolio.Aggregate
		fixed         bool
	)

	err := j.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := j.repo.LockPortfolio(ctx, userID); err != nil {
			return err
		}

		t, err := j.repo.OwnerTotal(ctx, userID)
		if err != nil {
			return err
		}

		before, err = j.portfolios.Get(ctx, userID)
		if err != nil {
			return err
		}

		after = aggregateFrom(t)
		after.UserID = userID
		after.UpdatedAt = j.clock.Now()

		if before.Equal(after) {
			return nil
		}

		fixed = true

		return j.portfolios.Overwrite(ctx, after)
	})

	if err != nil {
		j.logger.Error("repairing portfolio failed", zap.String("user_id", userID), zap.Error(err))
		report.Errors = append(report.Errors, fmt.Sprintf("portfolio %s: %v", userID, err))
		report.add(Discrepancy{Kind: kind, Subject: userID, Action: ActionFixFailed})

		return
	}

	if !fixed {
		return
	}

	j.logger.Warn("portfolio aggregate repaired",
		zap.String("user_id", userID),
		zap.String("kind", string(kind)),
		zap.String("expected", describe(after)),
		zap.String("actual", describe(before)),
	)

	report.add(Discrepancy{
		Kind:     kind,
		Subject:  userID,
		Expected: describe(after),
		Actual:   describe(before),
		Action:   ActionAutoFixed,
	})
}

func (j *Job) repairReferrals(ctx context.Context, report *Report) error {
	if j.referrals == nil {
		return nil
	}

	missing, err := j.repo.UnrewardedPurchases(ctx, referralRepairBatch)
	if err != nil {
		return fmt.Errorf("listing unrewarded purchases: %w", err)
	}

	for _, p := range missing {
		reward, created, err := j.referrals.CreditReferral(ctx, p.BuyerID, p.PaymentReference, p.Amount)
		if err != nil {
			j.logger.Error("repairing referral reward failed",
				zap.String("payment_reference", p.PaymentReference),
				zap.Error(err),
			)
			report.Errors = append(report.Errors, fmt.Sprintf("referral %s: %v", p.PaymentReference, err))
			report.add(Discrepancy{Kind: KindMissingReferralReward, Subject: p.PaymentReference, Action: ActionFixFailed})

			continue
		}

		if !created {
			continue
		}

		report.ReferralsRepaired++
		report.add(Discrepancy{
			Kind:     KindMissingReferralReward,
			Subject:  p.PaymentReference,
			Expected: reward.Commission.StringFixed(2),
			Actual:   "none",
			Action:   ActionAutoFixed,
		})
	}

	return nil
}

func (j *Job) log(r *Report) {
	fields := []zap.Field{
		zap.Int("plots_checked", r.PlotsChecked),
		zap.Int("users_checked", r.UsersChecked),
		zap.Int("discrepancies", len(r.Discrepancies)),
		zap.Int("auto_fixed", r.AutoFixed),
		zap.Int("manual_review", r.ManualReview),
		zap.Int("referrals_repaired", r.ReferralsRepaired),
		zap.Int("errors", len(r.Errors)),
		zap.Duration("duration", r.FinishedAt.Sub(r.StartedAt)),
	}

	if r.ManualReview > 0 || len(r.Errors) > 0 {
		j.logger.Error("reconciliation finished with items needing attention", fields...)
		return
	}

	j.logger.Info("reconciliation finished", fields...)
}

// RunEvery runs the job on every tick until ctx is cancelled.
func (j *Job) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	j.logger.Info("reconciliation scheduler started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("reconciliation scheduler stopped")
			return
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil && ctx.Err() == nil {
				j.logger.Error("scheduled reconciliation failed", zap.Error(err))
			}
		}
	}
}

func (j *Job) Reports(ctx context.Context, limit int) ([]*Report, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	return j.repo.ListReports(ctx, limit)
}

func aggregateFrom(t *OwnerTotal) *portfolio.Aggregate {
	return &portfolio.Aggregate{
		UserID:         t.OwnerID,
		TotalSqm:       t.TotalSqm,
		TotalPlots:     t.Ownerships,
		PortfolioValue: t.Value.Round(2),
	}
}

func describe(a *portfolio.Aggregate) string {
	return fmt.Sprintf("sqm=%d plots=%d value=%s", a.TotalSqm, a.TotalPlots, a.PortfolioValue.StringFixed(2))
}
