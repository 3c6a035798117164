// Package memory provides in-process Sender/Receiver/PayloadStore fakes
// for tests and local development, conforming to the capability
// interfaces pkg/claimcheck depends on.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/google/uuid"
)

// Broker is an in-memory Sender+Receiver pair backed by a single
// channel, so messages sent through it are immediately available to
// Receive.
type Broker struct {
	mu       sync.Mutex
	messages chan claimcheck.IncomingMessage
	closed   bool
}

// NewBroker creates a broker with the given channel buffer size.
func NewBroker(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Broker{messages: make(chan claimcheck.IncomingMessage, bufferSize)}
}

// Send implements claimcheck.Sender.
func (b *Broker) Send(ctx context.Context, msg claimcheck.OutgoingMessage) error {
	select {
	case b.messages <- toIncoming(msg):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewBatch implements claimcheck.Sender.
func (b *Broker) NewBatch(ctx context.Context) (claimcheck.Batch, error) {
	return &batch{maxSize: 256 * 1024}, nil
}

// SendBatch implements claimcheck.Sender.
func (b *Broker) SendBatch(ctx context.Context, batch claimcheck.Batch) error {
	mb := batch.(*batch)
	for _, msg := range mb.messages {
		if err := b.Send(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Receive implements claimcheck.Receiver. waitTime is honoured as an
// upper bound on how long to wait for at least one message.
func (b *Broker) Receive(ctx context.Context, maxMessages int, waitTime time.Duration) ([]claimcheck.IncomingMessage, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	deadline := time.NewTimer(waitTime)
	defer deadline.Stop()

	out := make([]claimcheck.IncomingMessage, 0, maxMessages)
	for len(out) < maxMessages {
		// A message already sitting in the channel always wins over the
		// wait-time deadline, whether or not this is the first message.
		select {
		case msg := <-b.messages:
			out = append(out, msg)
			continue
		default:
		}

		if len(out) > 0 {
			return out, nil
		}

		select {
		case msg := <-b.messages:
			out = append(out, msg)
		case <-ctx.Done():
			return out, nil
		case <-deadline.C:
			return out, nil
		}
	}
	return out, nil
}

// RenewLock is a no-op: there is no lease to renew in-process.
func (b *Broker) RenewLock(ctx context.Context, msg claimcheck.IncomingMessage) error { return nil }

// Complete is a no-op: the message was already removed from the channel on receive.
func (b *Broker) Complete(ctx context.Context, msg claimcheck.IncomingMessage) error { return nil }

// Abandon re-enqueues msg so a subsequent Receive can redeliver it.
func (b *Broker) Abandon(ctx context.Context, msg claimcheck.IncomingMessage) error {
	select {
	case b.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DeadLetter drops msg; there is no separate dead-letter queue in-process.
func (b *Broker) DeadLetter(ctx context.Context, msg claimcheck.IncomingMessage, reason string) error {
	return nil
}

// Close marks the broker closed.
func (b *Broker) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.messages)
	}
	return nil
}

func toIncoming(msg claimcheck.OutgoingMessage) claimcheck.IncomingMessage {
	return claimcheck.IncomingMessage{
		ID:         uuid.NewString(),
		Body:       msg.Body,
		Properties: msg.Properties,
	}
}

// batch is an in-memory Batch with a fixed byte budget, approximating
// the broker transport's real byte-budgeted batch container.
type batch struct {
	messages []claimcheck.OutgoingMessage
	size     int
	maxSize  int
}

func (b *batch) TryAdd(msg claimcheck.OutgoingMessage) bool {
	cost := len(msg.Body)
	for k, v := range msg.Properties {
		cost += len(k) + len(v)
	}
	if b.size+cost > b.maxSize {
		return false
	}
	b.messages = append(b.messages, msg)
	b.size += cost
	return true
}

func (b *batch) Len() int { return len(b.messages) }
