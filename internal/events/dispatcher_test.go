package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/subx/internal/events"
)

func TestInProcess_RetriesUntilSuccess(t *testing.T) {
	d := events.NewInProcess(nil, events.WithRetry(3, time.Millisecond))

	calls := 0
	d.Subscribe("flaky", func(context.Context, events.PurchaseFinalized) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}

		return nil
	})

	require.NoError(t, d.PublishPurchaseFinalized(context.Background(), events.PurchaseFinalized{PaymentReference: "R1"}))
	assert.Equal(t, 3, calls)
}

func TestInProcess_FailureDoesNotStopOtherHandlers(t *testing.T) {
	d := events.NewInProcess(nil, events.WithRetry(2, time.Millisecond))

	var got []string

	d.Subscribe("broken", func(context.Context, events.PurchaseFinalized) error {
		got = append(got, "broken")
		return errors.New("down")
	})
	d.Subscribe("notify", func(_ context.Context, ev events.PurchaseFinalized) error {
		got = append(got, "notify:"+ev.PaymentReference)
		return nil
	})

	err := d.PublishPurchaseFinalized(context.Background(), events.PurchaseFinalized{PaymentReference: "R2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, []string{"broken", "broken", "notify:R2"}, got)
}

func TestInProcess_StopsRetryingOnCancel(t *testing.T) {
	d := events.NewInProcess(nil, events.WithRetry(5, time.Hour))

	calls := 0
	d.Subscribe("slow", func(context.Context, events.PurchaseFinalized) error {
		calls++
		return errors.New("fail")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.PublishPurchaseFinalized(ctx, events.PurchaseFinalized{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, events.LogNotifier(nil)(context.Background(), events.PurchaseFinalized{}))
}
