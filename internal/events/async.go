package events

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/logging"
)

// ErrQueueFull is returned when the dispatch queue has no room for another event.
var ErrQueueFull = errors.New("event queue full")

// Dispatcher is anything that can deliver a finalized purchase.
type Dispatcher interface {
	PublishPurchaseFinalized(ctx context.Context, ev PurchaseFinalized) error
}

// Async queues events in a bounded buffer and delivers them from Run, so publishing
// never waits on subscribers or the broker. An event that does not fit is dropped
// and left to reconciliation.
type Async struct {
	next    Dispatcher
	queue   chan PurchaseFinalized
	timeout time.Duration
	logger  *zap.Logger
}

// NewAsync wraps next. Each delivery gets at most timeout.
func NewAsync(next Dispatcher, size int, timeout time.Duration, logger *zap.Logger) *Async {
	if size <= 0 {
		size = 1
	}

	return &Async{
		next:    next,
		queue:   make(chan PurchaseFinalized, size),
		timeout: timeout,
		logger:  logging.OrNop(logger),
	}
}

func (a *Async) PublishPurchaseFinalized(_ context.Context, ev PurchaseFinalized) error {
	select {
	case a.queue <- ev:
		return nil
	default:
		a.logger.Warn("dropping purchase event, queue full",
			zap.String("payment_reference", ev.PaymentReference),
			zap.Int("capacity", cap(a.queue)),
		)

		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is cancelled, then gives what is still queued
// one more timeout window to go out.
func (a *Async) Run(ctx context.Context) {
	for {
		select {
		case ev := <-a.queue:
			a.deliver(ctx, ev)
		case <-ctx.Done():
			a.drain()
			return
		}
	}
}

func (a *Async) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	for {
		select {
		case ev := <-a.queue:
			if ctx.Err() != nil {
				a.logger.Warn("purchase event not delivered before shutdown",
					zap.String("payment_reference", ev.PaymentReference))

				continue
			}

			a.deliver(ctx, ev)
		default:
			return
		}
	}
}

func (a *Async) deliver(ctx context.Context, ev PurchaseFinalized) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.next.PublishPurchaseFinalized(ctx, ev); err != nil {
		a.logger.Error("purchase event delivery failed",
			zap.String("payment_reference", ev.PaymentReference),
			zap.Error(err),
		)
	}
}
