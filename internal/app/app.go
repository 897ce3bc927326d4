package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/clock"
	"github.com/MrJamesThe3rd/subx/internal/config"
	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/events"
	"github.com/MrJamesThe3rd/subx/internal/importer"
	"github.com/MrJamesThe3rd/subx/internal/logging"
	"github.com/MrJamesThe3rd/subx/internal/payment"
	"github.com/MrJamesThe3rd/subx/internal/plot"
	plotStore "github.com/MrJamesThe3rd/subx/internal/plot/store"
	"github.com/MrJamesThe3rd/subx/internal/portfolio"
	portfolioStore "github.com/MrJamesThe3rd/subx/internal/portfolio/store"
	"github.com/MrJamesThe3rd/subx/internal/purchase"
	purchaseStore "github.com/MrJamesThe3rd/subx/internal/purchase/store"
	"github.com/MrJamesThe3rd/subx/internal/reconcile"
	reconcileStore "github.com/MrJamesThe3rd/subx/internal/reconcile/store"
	"github.com/MrJamesThe3rd/subx/internal/referral"
	referralStore "github.com/MrJamesThe3rd/subx/internal/referral/store"
)

// Services is the wired domain layer shared by the API, the CLI and the TUI.
type Services struct {
	Plots      *plot.Service
	Importer   *importer.Service
	Portfolios *portfolio.Service
	Referrals  *referral.Service
	Purchases  *purchase.Service
	Reconcile  *reconcile.Job
	Verifier   *payment.WebhookVerifier

	cfg       *config.Config
	logger    *zap.Logger
	publisher *events.Publisher
	consumer  *events.Consumer
	dispatch  *events.Async
}

func New(cfg *config.Config, db *sql.DB, logger *zap.Logger) (*Services, error) {
	logger = logging.OrNop(logger)

	var (
		clk = clock.NewSystem()
		tx  = database.NewTransactor(db)
	)

	var (
		plotSvc      = plot.NewService(plotStore.New(db), tx)
		portfolioSvc = portfolio.NewService(portfolioStore.New(db))
		referralSvc  = referral.NewService(referralStore.New(db), tx, cfg.Referral.Rate, clk, logger.Named("referral"))
	)

	refs, err := purchase.NewSnowflakeReferences(cfg.Purchase.ReferenceNode)
	if err != nil {
		return nil, err
	}

	gateway, secret := newGateway(cfg)

	s := &Services{
		Plots:      plotSvc,
		Importer:   importer.NewService(plotSvc),
		Portfolios: portfolioSvc,
		Referrals:  referralSvc,
		Verifier:   payment.NewWebhookVerifier(secret),
		cfg:        cfg,
		logger:     logger,
	}

	subscribers := events.NewInProcess(logger.Named("events"))
	subscribers.Subscribe("referral-credit", referralSvc.HandlePurchaseFinalized)
	subscribers.Subscribe("buyer-notification", events.LogNotifier(logger.Named("notify")))

	// With a broker, finalization publishes and the consumer feeds the same subscribers,
	// so a crash between commit and crediting is retried from the queue.
	var downstream events.Dispatcher = subscribers
	if cfg.AMQP.URL != "" {
		s.publisher = events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, logger.Named("amqp"))
		s.consumer = events.NewConsumer(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue,
			subscribers.PublishPurchaseFinalized, logger.Named("amqp"))
		downstream = s.publisher
	}

	// Webhook responses never wait on subscribers or the broker.
	s.dispatch = events.NewAsync(downstream, cfg.Events.QueueSize, cfg.Events.HandlerTimeout, logger.Named("events"))

	s.Purchases, err = purchase.NewService(purchase.ServiceConfig{
		Repository:      purchaseStore.New(db),
		Transactor:      tx,
		Inventory:       plotSvc,
		Portfolios:      portfolioSvc,
		Payments:        gateway,
		Events:          s.dispatch,
		References:      refs,
		Clock:           clk,
		Logger:          logger.Named("purchase"),
		ReservationTTL:  cfg.Purchase.ReservationTTL,
		AmountTolerance: cfg.Purchase.AmountTolerance,
		CallbackURL:     cfg.Payment.CallbackURL,
	})
	if err != nil {
		return nil, fmt.Errorf("building purchase service: %w", err)
	}

	s.Reconcile = reconcile.NewJob(reconcileStore.New(db), tx, portfolioSvc, referralSvc, clk, logger.Named("reconcile"))

	return s, nil
}

// newGateway returns the sandbox when PAYMENT_SANDBOX is set and the Paystack client
// otherwise, together with the secret webhooks are signed with. Config validation
// guarantees a secret key outside the sandbox.
func newGateway(cfg *config.Config) (payment.Initializer, string) {
	if cfg.Payment.Sandbox {
		return payment.NewSandbox(cfg.Payment.CallbackURL), payment.SandboxSecret
	}

	return payment.NewPaystackClient(payment.PaystackConfig{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.SecretKey,
		Currency:  cfg.Payment.Currency,
		Timeout:   cfg.Payment.Timeout,
	}), cfg.Payment.SecretKey
}

// Sandboxed reports whether payments go to the local sandbox.
func (s *Services) Sandboxed() bool {
	return s.cfg.Payment.Sandbox
}

// RunBackground starts the event dispatcher, the expiry sweeper, the reconciliation
// schedule and the event consumer. It blocks until ctx is cancelled and every worker
// has returned.
func (s *Services) RunBackground(ctx context.Context) {
	var wg sync.WaitGroup

	wg.Go(func() {
		s.dispatch.Run(ctx)
	})

	wg.Go(func() {
		s.Purchases.RunSweeper(ctx, s.cfg.Purchase.SweepInterval)
	})

	if s.cfg.Reconcile.Enabled {
		wg.Go(func() {
			s.Reconcile.RunEvery(ctx, s.cfg.Reconcile.Interval)
		})
	}

	if s.consumer != nil {
		wg.Go(func() {
			if err := s.consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("event consumer stopped", zap.Error(err))
			}
		})
	}

	wg.Wait()
}

func (s *Services) Close() error {
	if s.publisher == nil {
		return nil
	}

	return s.publisher.Close()
}
