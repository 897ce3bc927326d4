package purchase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/events"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/plot"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=purchase
type Repository interface {
	CreateReservation(ctx context.Context, r *Reservation) error
	GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetReservationForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetReservationByReferenceForUpdate(ctx context.Context, reference string) (*Reservation, error)
	// UpdateReservationStatus moves a reservation from one status to another and reports
	// false when it was no longer in the from status.
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	ListExpiredReservations(ctx context.Context, now time.Time, limit int) ([]*Reservation, error)
	CreateOwnership(ctx context.Context, o *Ownership) error
	GetOwnershipByReservation(ctx context.Context, reservationID uuid.UUID) (*Ownership, error)
	ListOwnershipsByOwner(ctx context.Context, ownerID string) ([]*Ownership, error)
	RecordIncident(ctx context.Context, inc *Incident) error
	ListIncidents(ctx context.Context, limit int) ([]*Incident, error)
}

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Inventory is satisfied by *plot.Service.
type Inventory interface {
	Get(ctx context.Context, id uuid.UUID) (*plot.Plot, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*plot.Plot, error)
	AdjustAvailability(ctx context.Context, id uuid.UUID, deltaSqm int) (*plot.Plot, error)
}

// Portfolios is satisfied by *portfolio.Service.
type Portfolios interface {
	ApplyPurchase(ctx context.Context, userID string, sqm int, amountPaid decimal.Decimal) error
}

type Dispatcher interface {
	PublishPurchaseFinalized(ctx context.Context, ev events.PurchaseFinalized) error
}

type ReferenceGenerator interface {
	NewReference() string
}

const (
	defaultReservationTTL = 30 * time.Minute
	expiryBatchSize       = 500
)

type ServiceConfig struct {
	Repository      Repository
	Transactor      Transactor
	Inventory       Inventory
	Portfolios      Portfolios
	Payments        payment.Initializer
	Events          Dispatcher
	References      ReferenceGenerator
	Clock           clock.Clock
	Logger          *zap.Logger
	ReservationTTL  time.Duration
	AmountTolerance decimal.Decimal
	CallbackURL     string
}

type Service struct {
	repo        Repository
	tx          Transactor
	inventory   Inventory
	portfolios  Portfolios
	payments    payment.Initializer
	events      Dispatcher
	refs        ReferenceGenerator
	clock       clock.Clock
	logger      *zap.Logger
	ttl         time.Duration
	tolerance   decimal.Decimal
	callbackURL string
}

func NewService(cfg ServiceConfig) (*Service, error) {
	switch {
	case cfg.Repository == nil:
		return nil, errors.New("purchase service: repository is required")
	case cfg.Transactor == nil:
		return nil, errors.New("purchase service: transactor is required")
	case cfg.Inventory == nil:
		return nil, errors.New("purchase service: inventory is required")
	case cfg.Portfolios == nil:
		return nil, errors.New("purchase service: portfolios is required")
	case cfg.Payments == nil:
		return nil, errors.New("purchase service: payment initializer is required")
	case cfg.References == nil:
		return nil, errors.New("purchase service: reference generator is required")
	}

	s := &Service{
		repo:        cfg.Repository,
		tx:          cfg.Transactor,
		inventory:   cfg.Inventory,
		portfolios:  cfg.Portfolios,
		payments:    cfg.Payments,
		events:      cfg.Events,
		refs:        cfg.References,
		clock:       cfg.Clock,
		logger:      logging.OrNop(cfg.Logger),
		ttl:         cfg.ReservationTTL,
		tolerance:   cfg.AmountTolerance,
		callbackURL: cfg.CallbackURL,
	}

	if s.clock == nil {
		s.clock = clock.NewSystem()
	}

	if s.ttl <= 0 {
		s.ttl = defaultReservationTTL
	}

	return s, nil
}

type ReserveParams struct {
	PlotID  uuid.UUID
	BuyerID string
	Sqm     int
	Email   string
}

type ReserveResult struct {
	Reservation        *Reservation
	PaymentRedirectURL string
}

// Reserve holds sqm on a plot and opens a gateway transaction for the expected amount.
// The check and the decrement happen under the plot row lock, so concurrent reservations
// on one plot never oversell it.
func (s *Service) Reserve(ctx context.Context, params ReserveParams) (*ReserveResult, error) {
	if params.Sqm <= 0 {
		return nil, ErrInvalidSqm
	}

	buyerID := strings.TrimSpace(params.BuyerID)
	if buyerID == "" {
		return nil, ErrInvalidBuyer
	}

	var res *Reservation

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.inventory.GetForUpdate(ctx, params.PlotID)
		if err != nil {
			return err
		}

		if p.AvailableSqm < params.Sqm {
			return &InsufficientSqmError{Requested: params.Sqm, Available: p.AvailableSqm}
		}

		if _, err := s.inventory.AdjustAvailability(ctx, p.ID, -params.Sqm); err != nil {
			if errors.Is(err, plot.ErrInsufficientInventory) {
				return &InsufficientSqmError{Requested: params.Sqm, Available: p.AvailableSqm}
			}

			return fmt.Errorf("holding sqm: %w", err)
		}

		now := s.clock.Now()
		res = &Reservation{
			PlotID:           p.ID,
			BuyerID:          buyerID,
			Sqm:              params.Sqm,
			AmountExpected:   p.PricePerSqm.Mul(decimal.NewFromInt(int64(params.Sqm))).Round(2),
			Status:           StatusReserved,
			PaymentReference: s.refs.NewReference(),
			CreatedAt:        now,
			UpdatedAt:        now,
			ExpiresAt:        now.Add(s.ttl),
		}

		if err := s.repo.CreateReservation(ctx, res); err != nil {
			return fmt.Errorf("creating reservation: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	auth, err := s.payments.Initialize(ctx, payment.InitializeRequest{
		Reference:   res.PaymentReference,
		Amount:      res.AmountExpected,
		Email:       buyerEmail(params.Email, buyerID),
		CallbackURL: s.callbackURL,
		Metadata: map[string]string{
			"reservation_id": res.ID.String(),
			"plot_id":        res.PlotID.String(),
			"buyer_id":       res.BuyerID,
		},
	})
	if err != nil {
		s.logger.Error("payment initialization failed, releasing reservation",
			zap.String("reservation_id", res.ID.String()),
			zap.String("payment_reference", res.PaymentReference),
			zap.Error(err),
		)

		// The request context may already be gone; the hold must still be released.
		if _, relErr := s.release(context.WithoutCancel(ctx), res.ID, StatusCancelled); relErr != nil {
			s.logger.Error("releasing reservation after failed payment initialization",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(relErr),
			)
		}

		return nil, fmt.Errorf("%w: %v", ErrPaymentInitFailed, err)
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", res.ID.String()),
		zap.String("plot_id", res.PlotID.String()),
		zap.String("buyer_id", res.BuyerID),
		zap.Int("sqm", res.Sqm),
		zap.String("amount_expected", res.AmountExpected.StringFixed(2)),
		zap.String("payment_reference", res.PaymentReference),
	)

	return &ReserveResult{Reservation: res, PaymentRedirectURL: auth.AuthorizationURL}, nil
}

// buyerEmail falls back to a placeholder address for buyers identified only by id.
func buyerEmail(email, buyerID string) string {
	if email = strings.TrimSpace(email); email != "" {
		return email
	}

	if strings.Contains(buyerID, "@") {
		return buyerID
	}

	return buyerID + "@buyers.subx.app"
}

// Finalize commits a confirmed payment: the reservation completes, an ownership record is
// written and the buyer's portfolio grows, all in one transaction. Replays of an already
// finalized reference return the stored ownership without writing.
func (s *Service) Finalize(ctx context.Context, reference string, confirmedAmount decimal.Decimal) (*FinalizationResult, error) {
	var (
		result   *FinalizationResult
		incident *Incident
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		res, err := s.repo.GetReservationByReferenceForUpdate(ctx, reference)
		if err != nil {
			if errors.Is(err, ErrReservationNotFound) {
				incident = s.newIncident(reference, IncidentReservationNotFound, "no reservation for payment reference")
			}

			return err
		}

		switch res.Status {
		case StatusCompleted:
			own, err := s.repo.GetOwnershipByReservation(ctx, res.ID)
			if err != nil {
				return fmt.Errorf("loading ownership for completed reservation: %w", err)
			}

			result = &FinalizationResult{Reservation: res, Ownership: own, AlreadyFinalized: true}

			return nil
		case StatusExpired, StatusCancelled:
			incident = s.newIncident(reference, IncidentNotReserved,
				fmt.Sprintf("payment of %s confirmed for %s reservation %s", confirmedAmount.StringFixed(2), res.Status, res.ID))

			return &IntegrityConflictError{PaymentReference: reference, Status: res.Status}
		}

		if confirmedAmount.Sub(res.AmountExpected).Abs().GreaterThan(s.tolerance) {
			incident = s.newIncident(reference, IncidentAmountMismatch,
				fmt.Sprintf("expected %s, confirmed %s", res.AmountExpected.StringFixed(2), confirmedAmount.StringFixed(2)))

			return &AmountMismatchError{PaymentReference: reference, Expected: res.AmountExpected, Confirmed: confirmedAmount}
		}

		p, err := s.inventory.Get(ctx, res.PlotID)
		if err != nil {
			return fmt.Errorf("loading plot: %w", err)
		}

		ok, err := s.repo.UpdateReservationStatus(ctx, res.ID, StatusReserved, StatusCompleted)
		if err != nil {
			return fmt.Errorf("completing reservation: %w", err)
		}

		if !ok {
			return fmt.Errorf("completing reservation %s: %w", res.ID, ErrReservationNotActive)
		}

		now := s.clock.Now()
		res.Status = StatusCompleted
		res.UpdatedAt = now

		own := &Ownership{
			ReservationID:    res.ID,
			PlotID:           res.PlotID,
			OwnerID:          res.BuyerID,
			Sqm:              res.Sqm,
			AmountPaid:       confirmedAmount.Round(2),
			Percentage:       ownershipPercentage(res.Sqm, p.TotalSqm),
			PaymentReference: res.PaymentReference,
			CreatedAt:        now,
		}

		if err := s.repo.CreateOwnership(ctx, own); err != nil {
			return fmt.Errorf("creating ownership: %w", err)
		}

		if err := s.portfolios.ApplyPurchase(ctx, res.BuyerID, res.Sqm, own.AmountPaid); err != nil {
			return err
		}

		result = &FinalizationResult{Reservation: res, Ownership: own}

		return nil
	})

	if incident != nil {
		s.recordIncident(ctx, incident, err)
	}

	if err != nil {
		if !NeedsManualReview(err) {
			s.logger.Warn("finalization failed", zap.String("payment_reference", reference), zap.Error(err))
		}

		return nil, err
	}

	if result.AlreadyFinalized {
		s.logger.Info("payment already finalized", zap.String("payment_reference", reference))
		return result, nil
	}

	s.logger.Info("purchase finalized",
		zap.String("payment_reference", reference),
		zap.String("reservation_id", result.Reservation.ID.String()),
		zap.String("ownership_id", result.Ownership.ID.String()),
		zap.String("buyer_id", result.Reservation.BuyerID),
		zap.Int("sqm", result.Ownership.Sqm),
	)

	s.dispatch(ctx, result)

	return result, nil
}

func (s *Service) newIncident(reference string, kind IncidentKind, detail string) *Incident {
	return &Incident{PaymentReference: reference, Kind: kind, Detail: detail, CreatedAt: s.clock.Now()}
}

// recordIncident runs after the finalization transaction rolled back.
func (s *Service) recordIncident(ctx context.Context, inc *Incident, cause error) {
	s.logger.Error("payment requires manual review",
		zap.String("payment_reference", inc.PaymentReference),
		zap.String("kind", string(inc.Kind)),
		zap.String("detail", inc.Detail),
		zap.Error(cause),
	)

	if err := s.repo.RecordIncident(context.WithoutCancel(ctx), inc); err != nil {
		s.logger.Error("recording incident failed", zap.String("payment_reference", inc.PaymentReference), zap.Error(err))
	}
}

// dispatch publishes the finalized purchase. The purchase is already committed, so
// failures are logged and left to reconciliation.
func (s *Service) dispatch(ctx context.Context, result *FinalizationResult) {
	if s.events == nil {
		return
	}

	ev := events.PurchaseFinalized{
		PaymentReference: result.Ownership.PaymentReference,
		ReservationID:    result.Reservation.ID,
		OwnershipID:      result.Ownership.ID,
		PlotID:           result.Ownership.PlotID,
		BuyerID:          result.Ownership.OwnerID,
		Sqm:              result.Ownership.Sqm,
		Amount:           result.Ownership.AmountPaid,
		FinalizedAt:      result.Ownership.CreatedAt,
	}

	if err := s.events.PublishPurchaseFinalized(context.WithoutCancel(ctx), ev); err != nil {
		s.logger.Error("post-commit dispatch failed",
			zap.String("payment_reference", ev.PaymentReference),
			zap.Error(err),
		)
	}
}

// Cancel releases a reservation that has not been paid.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	res, err := s.release(ctx, id, StatusCancelled)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation cancelled",
		zap.String("reservation_id", res.ID.String()),
		zap.Int("sqm_released", res.Sqm),
	)

	return res, nil
}

// release moves a reserved reservation to a terminal status and returns its sqm to the plot.
func (s *Service) release(ctx context.Context, id uuid.UUID, to Status) (*Reservation, error) {
	var res *Reservation

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReservationForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if r.Status != StatusReserved {
			return fmt.Errorf("%w: status is %s", ErrReservationNotActive, r.Status)
		}

		return s.releaseLocked(ctx, r, to, &res)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (s *Service) releaseLocked(ctx context.Context, r *Reservation, to Status, out **Reservation) error {
	ok, err := s.repo.UpdateReservationStatus(ctx, r.ID, StatusReserved, to)
	if err != nil {
		return fmt.Errorf("updating reservation status: %w", err)
	}

	if !ok {
		return ErrReservationNotActive
	}

	if _, err := s.inventory.AdjustAvailability(ctx, r.PlotID, r.Sqm); err != nil {
		return fmt.Errorf("restoring sqm: %w", err)
	}

	r.Status = to
	r.UpdatedAt = s.clock.Now()
	*out = r

	return nil
}

// ExpireStale expires reservations whose hold ran out and returns their sqm to inventory.
// Each reservation is re-checked under its row lock in its own transaction, so a payment
// finalized concurrently wins and is never expired.
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	now := s.clock.Now()

	candidates, err := s.repo.ListExpiredReservations(ctx, now, expiryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("listing expired reservations: %w", err)
	}

	var (
		expired int
		errs    []error
	)

	for _, c := range candidates {
		ok, err := s.expireOne(ctx, c.ID, now)
		if err != nil {
			s.logger.Warn("expiring reservation failed", zap.String("reservation_id", c.ID.String()), zap.Error(err))
			errs = append(errs, fmt.Errorf("reservation %s: %w", c.ID, err))

			continue
		}

		if ok {
			expired++
		}
	}

	if expired > 0 {
		s.logger.Info("expired stale reservations", zap.Int("count", expired))
	}

	return expired, errors.Join(errs...)
}

func (s *Service) expireOne(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var res *Reservation

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		r, err := s.repo.GetReservationForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if r.Status != StatusReserved || now.Before(r.ExpiresAt) {
			return nil
		}

		return s.releaseLocked(ctx, r, StatusExpired, &res)
	})
	if err != nil {
		return false, err
	}

	return res != nil, nil
}

// RunSweeper expires stale reservations every interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("reservation sweeper started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reservation sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.ExpireStale(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("reservation sweep failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) GetReservation(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	return s.repo.GetReservation(ctx, id)
}

func (s *Service) ListOwnerships(ctx context.Context, ownerID string) ([]*Ownership, error) {
	return s.repo.ListOwnershipsByOwner(ctx, ownerID)
}

func (s *Service) ListIncidents(ctx context.Context, limit int) ([]*Incident, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return s.repo.ListIncidents(ctx, limit)
}
