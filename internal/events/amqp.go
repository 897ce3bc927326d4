package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/logging"
)

const (
	exchangeKind = "topic"
	dialTimeout  = 5 * time.Second
)

// Publisher sends purchase events to a durable topic exchange. The connection is
// opened on first use and reopened after the broker drops it.
type Publisher struct {
	url      string
	exchange string
	logger   *zap.Logger

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewPublisher(url, exchange string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, exchange: exchange, logger: logging.OrNop(logger)}
}

func (p *Publisher) PublishPurchaseFinalized(ctx context.Context, ev PurchaseFinalized) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.PaymentReference,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// One reconnect attempt covers a broker restart between publishes.
	for attempt := 0; attempt < 2; attempt++ {
		ch, err := p.channel()
		if err != nil {
			return err
		}

		err = ch.PublishWithContext(ctx, p.exchange, RoutingKeyPurchaseFinalized, false, false, msg)
		if err == nil {
			return nil
		}

		p.logger.Warn("amqp publish failed", zap.Int("attempt", attempt+1), zap.Error(err))
		p.resetLocked()

		if attempt == 1 {
			return fmt.Errorf("publish %s: %w", RoutingKeyPurchaseFinalized, err)
		}
	}

	return nil
}

func (p *Publisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}

	p.resetLocked()

	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(p.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p.conn, p.ch = conn, ch

	return ch, nil
}

func (p *Publisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}

	if p.conn != nil {
		_ = p.conn.Close()
	}

	p.conn, p.ch = nil, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetLocked()

	return nil
}

// Consumer binds a durable queue to the purchases exchange and feeds deliveries to a handler.
type Consumer struct {
	url      string
	exchange string
	queue    string
	handler  PurchaseHandler
	attempts int
	logger   *zap.Logger
}

func NewConsumer(url, exchange, queue string, handler PurchaseHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		url:      url,
		exchange: exchange,
		queue:    queue,
		handler:  handler,
		attempts: 3,
		logger:   logging.OrNop(logger),
	}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second

	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.logger.Warn("amqp dial failed", zap.Error(err), zap.Duration("retry_in", backoff))

			if !sleep(ctx, backoff) {
				return ctx.Err()
			}

			if backoff < 30*time.Second {
				backoff *= 2
			}

			continue
		}

		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("amqp consume loop ended, reconnecting", zap.Error(err))

		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(20, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	if err := ch.ExchangeDeclare(c.exchange, exchangeKind, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(c.queue, RoutingKeyPurchaseFinalized, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	for d := range deliveries {
		c.handle(ctx, d)
	}

	return errors.New("deliveries channel closed")
}

// handle acks processed messages and dead-letters (nack without requeue) the rest so a
// poison message cannot spin the consumer. Reconciliation repairs whatever was dropped.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev PurchaseFinalized
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		c.logger.Error("discarding undecodable event", zap.Error(err))
		_ = d.Nack(false, false)

		return
	}

	if err := retry(ctx, c.attempts, 200*time.Millisecond, func() error { return c.handler(ctx, ev) }); err != nil {
		c.logger.Error("purchase event handler failed",
			zap.String("payment_reference", ev.PaymentReference),
			zap.Error(err),
		)
		_ = d.Nack(false, false)

		return
	}

	_ = d.Ack(false)
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
