package claimcheck_test

import (
	"context"
	"sync"
	"testing"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	eventsmemory "github.com/azsbx/extended-client/pkg/events/adapters/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azsbx/extended-client/pkg/events"
)

func TestEventBusReceivesOffloadedAndResolvedAndDeleted(t *testing.T) {
	cfg := &claimcheck.Config{
		MessageSizeThreshold: 4,
		PayloadSupportEnabled: true,
		MaxAllowedProperties: 9,
		CleanupBlobOnDelete:  true,
		UserAgent:            "extended-client/1.0",
	}
	client, _, _ := newTestClient(t, cfg)

	bus := eventsmemory.New()
	client = client.WithEventBus(bus)

	var mu sync.Mutex
	var seen []string
	require.NoError(t, bus.Subscribe(context.Background(), "claimcheck", func(ctx context.Context, e events.Event) error {
		mu.Lock()
		seen = append(seen, e.Type)
		mu.Unlock()
		return nil
	}))

	ctx := context.Background()
	require.NoError(t, client.Send(ctx, []byte("a body bigger than four bytes"), nil))

	resolved, err := client.Receive(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, resolved, 1)

	client.DeletePayload(ctx, resolved[0])

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"claimcheck.offloaded", "claimcheck.resolved", "claimcheck.payload_deleted"}, seen)
}
