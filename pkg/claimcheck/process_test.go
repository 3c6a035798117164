package claimcheck_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartProcessorCompletesOnHandlerSuccess(t *testing.T) {
	cfg := &claimcheck.Config{PayloadSupportEnabled: true, MaxDeliveryCount: 5}
	client, broker, _ := newTestClient(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, client.Send(context.Background(), []byte("hello"), nil))

	var mu sync.Mutex
	var got []byte
	done := make(chan struct{})

	err := client.StartProcessor(ctx, "queue", func(ctx context.Context, msg claimcheck.Resolved) error {
		mu.Lock()
		got = msg.Body
		mu.Unlock()
		close(done)
		return nil
	}, nil)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for processor delivery")
	}

	mu.Lock()
	assert.Equal(t, []byte("hello"), got)
	mu.Unlock()
	_ = broker
}

func TestStartProcessorDeadLettersAfterMaxDeliveryCount(t *testing.T) {
	cfg := &claimcheck.Config{PayloadSupportEnabled: true, MaxDeliveryCount: 2}
	client, _, _ := newTestClient(t, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, client.Send(context.Background(), []byte("hello"), nil))

	var mu sync.Mutex
	attempts := 0
	errs := make(chan error, 8)

	err := client.StartProcessor(ctx, "queue", func(ctx context.Context, msg claimcheck.Resolved) error {
		mu.Lock()
		attempts++
		mu.Unlock()
		return errors.New("handler always fails")
	}, func(ctx context.Context, err error) {
		errs <- err
	})
	require.NoError(t, err)

	deadline := time.After(1500 * time.Millisecond)
	for {
		select {
		case <-errs:
			mu.Lock()
			n := attempts
			mu.Unlock()
			if n > cfg.MaxDeliveryCount {
				// Once dead-lettered the message is never delivered again.
				time.Sleep(300 * time.Millisecond)
				mu.Lock()
				assert.Equal(t, cfg.MaxDeliveryCount+1, attempts)
				mu.Unlock()
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for dead-letter after max delivery count")
		}
	}
}
