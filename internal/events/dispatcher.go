package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/logging"
)

// InProcess delivers events to local handlers, retrying each one with a doubling delay.
type InProcess struct {
	handlers []namedHandler
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

type namedHandler struct {
	name string
	fn   PurchaseHandler
}

type InProcessOption func(*InProcess)

func WithRetry(attempts int, backoff time.Duration) InProcessOption {
	return func(d *InProcess) {
		if attempts > 0 {
			d.attempts = attempts
		}

		d.backoff = backoff
	}
}

func NewInProcess(logger *zap.Logger, opts ...InProcessOption) *InProcess {
	d := &InProcess{
		attempts: 3,
		backoff:  100 * time.Millisecond,
		logger:   logging.OrNop(logger),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *InProcess) Subscribe(name string, fn PurchaseHandler) {
	d.handlers = append(d.handlers, namedHandler{name: name, fn: fn})
}

// PublishPurchaseFinalized runs every handler. A failing handler does not stop the others;
// the joined error lists the ones that gave up.
func (d *InProcess) PublishPurchaseFinalized(ctx context.Context, ev PurchaseFinalized) error {
	var errs []error

	for _, h := range d.handlers {
		if err := retry(ctx, d.attempts, d.backoff, func() error { return h.fn(ctx, ev) }); err != nil {
			d.logger.Error("purchase handler failed",
				zap.String("handler", h.name),
				zap.String("payment_reference", ev.PaymentReference),
				zap.Error(err),
			)

			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
		}
	}

	return errors.Join(errs...)
}

func retry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	var err error

	delay := backoff

	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}

		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
	}

	return err
}

// LogNotifier records the buyer-facing notification for a finalized purchase.
// Rendering and delivering the message is left to the notification service.
func LogNotifier(logger *zap.Logger) PurchaseHandler {
	logger = logging.OrNop(logger)

	return func(_ context.Context, ev PurchaseFinalized) error {
		logger.Info("purchase confirmation queued",
			zap.String("buyer_id", ev.BuyerID),
			zap.String("plot_id", ev.PlotID.String()),
			zap.Int("sqm", ev.Sqm),
			zap.String("amount", ev.Amount.StringFixed(2)),
			zap.String("payment_reference", ev.PaymentReference),
		)

		return nil
	}
}
