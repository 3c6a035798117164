package claimcheck_test

import (
	"context"
	"testing"
	"time"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncClientSendAndReceiveRoundTrip(t *testing.T) {
	cfg := &claimcheck.Config{
		MessageSizeThreshold:  1024,
		PayloadSupportEnabled: true,
		MaxAllowedProperties:  9,
	}
	client, _, _ := newTestClient(t, cfg)
	async := claimcheck.NewAsyncClient(client, 4)
	ctx := context.Background()

	sendFuture := async.Send(ctx, []byte("async body"), nil)
	_, err := sendFuture.Wait(ctx)
	require.NoError(t, err)

	recvFuture := async.Receive(ctx, 1, 0)
	resolved, err := recvFuture.Wait(ctx)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, []byte("async body"), resolved[0].Body)
}

func TestAsyncClientSendBatch(t *testing.T) {
	cfg := &claimcheck.Config{
		MessageSizeThreshold:  1024,
		PayloadSupportEnabled: true,
		MaxAllowedProperties:  9,
	}
	client, _, _ := newTestClient(t, cfg)
	async := claimcheck.NewAsyncClient(client, 4)
	ctx := context.Background()

	future := async.SendBatch(ctx, [][]byte{[]byte("one"), []byte("two")}, nil)
	_, err := future.Wait(ctx)
	require.NoError(t, err)

	recvFuture := async.Receive(ctx, 2, 0)
	resolved, err := recvFuture.Wait(ctx)
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
}

// Wait must return as soon as its own ctx is cancelled, even while the
// underlying receive (on an unrelated, uncancelled context) is still
// waiting out its own wait-time deadline.
func TestFutureWaitReturnsOnOwnContextCancellationWhileOperationStillRunning(t *testing.T) {
	cfg := &claimcheck.Config{PayloadSupportEnabled: true}
	client, _, _ := newTestClient(t, cfg)
	async := claimcheck.NewAsyncClient(client, 1)

	f := async.Receive(context.Background(), 1, 500*time.Millisecond)

	waitCtx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Wait(waitCtx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}
