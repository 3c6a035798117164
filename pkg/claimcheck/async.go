package claimcheck

import (
	"context"
	"time"

	"github.com/azsbx/extended-client/pkg/concurrency"
	"golang.org/x/sync/semaphore"
)

// defaultAsyncConcurrency bounds how many async Send/Receive operations
// may be in flight at once for a single AsyncClient, so an unbounded
// burst of deferred calls cannot exhaust broker/blob connections.
const defaultAsyncConcurrency = 32

// Future is a lazy deferred result: it completes when the underlying
// blocking operation does. Wait blocks until completion or ctx is
// cancelled, whichever comes first; cancelling ctx does not stop the
// underlying operation, which may leave an orphaned blob per spec.md §7.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(val T, err error) {
	f.val, f.err = val, err
	close(f.done)
}

// Wait blocks for the result or ctx cancellation.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncClient exposes the same pipeline as Client behind a deferred
// surface. Every call's validation, offload decision and property
// rules are identical to the blocking surface; only completion
// observation differs, and a bounded semaphore keeps concurrent
// in-flight operations from overrunning the broker/blob backends.
type AsyncClient struct {
	client *Client
	sem    *semaphore.Weighted
}

// NewAsyncClient wraps client with a deferred surface bounded by
// maxConcurrent in-flight operations (defaultAsyncConcurrency if <= 0).
func NewAsyncClient(client *Client, maxConcurrent int64) *AsyncClient {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultAsyncConcurrency
	}
	return &AsyncClient{client: client, sem: semaphore.NewWeighted(maxConcurrent)}
}

// Send starts an offload-and-send operation and returns immediately
// with a Future for its completion.
func (a *AsyncClient) Send(ctx context.Context, body []byte, userProps map[string]string) *Future[struct{}] {
	future := newFuture[struct{}]()
	if err := a.sem.Acquire(ctx, 1); err != nil {
		future.resolve(struct{}{}, err)
		return future
	}
	concurrency.SafeGo(ctx, func() {
		defer a.sem.Release(1)
		err := a.client.Send(ctx, body, userProps)
		future.resolve(struct{}{}, err)
	})
	return future
}

// SendBatch starts a batch send and returns its Future, identically to
// the blocking surface: each body's offload decision is evaluated
// independently, with up to prepareFanOut bodies prepared (and, when
// oversized, put to the payload store) concurrently, so blob puts are not
// ordered by the caller's sequence; messages are packed and sent in the
// caller's order.
func (a *AsyncClient) SendBatch(ctx context.Context, bodies [][]byte, commonProps map[string]string) *Future[struct{}] {
	future := newFuture[struct{}]()
	if err := a.sem.Acquire(ctx, 1); err != nil {
		future.resolve(struct{}{}, err)
		return future
	}
	concurrency.SafeGo(ctx, func() {
		defer a.sem.Release(1)
		err := a.client.SendBatch(ctx, bodies, commonProps)
		future.resolve(struct{}{}, err)
	})
	return future
}

// Receive starts a receive-and-resolve operation and returns its Future.
func (a *AsyncClient) Receive(ctx context.Context, n int, waitTime time.Duration) *Future[[]Resolved] {
	future := newFuture[[]Resolved]()
	if err := a.sem.Acquire(ctx, 1); err != nil {
		future.resolve(nil, err)
		return future
	}
	concurrency.SafeGo(ctx, func() {
		defer a.sem.Release(1)
		resolved, err := a.client.Receive(ctx, n, waitTime)
		future.resolve(resolved, err)
	})
	return future
}
