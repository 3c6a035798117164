// Package claimcheck implements the claim-check extension: it wraps a
// message-broker sender/receiver with transparent offload of oversized
// bodies to a blob store, replacing them on the wire with a small
// pointer record, and resolves them back on the receive side.
//
// The broker and blob store are modelled as capability interfaces
// (Sender/Receiver/ProcessorBuilder and PayloadStore) so this package
// never depends on a concrete SDK type; concrete wiring for Azure
// Service Bus and Azure Blob Storage lives in pkg/claimcheck/adapters.
package claimcheck

import (
	"context"
	"sync"
	"time"

	"github.com/azsbx/extended-client/pkg/events"
	"github.com/azsbx/extended-client/pkg/logger"
)

// eventTopic is the single topic lifecycle events are published under;
// subscribers distinguish them by Event.Type.
const eventTopic = "claimcheck"

const (
	eventTypeOffloaded      = "claimcheck.offloaded"
	eventTypeResolved       = "claimcheck.resolved"
	eventTypePayloadDeleted = "claimcheck.payload_deleted"
)

// Client holds one sender, one receiver, one payload store, and at most
// one processor, shared across all calls made on it. It is close-able;
// behaviour after Close is undefined.
type Client struct {
	cfg *Config

	sender   Sender
	receiver Receiver

	send    sendPipeline
	receive receivePipeline
	life    lifecycle

	builder ProcessorBuilder

	mu        sync.Mutex
	processor Processor
	closed    bool
}

// NewClient wires a Client from its collaborators. builder may be nil
// if the caller never intends to use StartProcessor.
func NewClient(cfg *Config, sender Sender, receiver Receiver, store PayloadStore, builder ProcessorBuilder) *Client {
	return &Client{
		cfg:      cfg,
		sender:   sender,
		receiver: receiver,
		send:     sendPipeline{cfg: cfg, store: store, sender: sender},
		receive:  receivePipeline{cfg: cfg, store: store, receiver: receiver},
		life:     lifecycle{cfg: cfg, store: store, receiver: receiver},
		builder:  builder,
	}
}

// WithEventBus attaches an events.Bus that lifecycle events (offload,
// resolve, payload deletion) are published to under eventTopic. Passing
// nil (the default) disables publication entirely.
func (c *Client) WithEventBus(bus events.Bus) *Client {
	c.send.bus = bus
	c.receive.bus = bus
	c.life.bus = bus
	return c
}

// Send offloads body (if the offload decision says to) and hands a
// single message to the broker.
func (c *Client) Send(ctx context.Context, body []byte, userProps map[string]string) error {
	return c.send.Send(ctx, body, userProps)
}

// SendBatch sends every body, packing as many as fit per broker batch,
// each body's offload decision evaluated independently.
func (c *Client) SendBatch(ctx context.Context, bodies [][]byte, commonProps map[string]string) error {
	return c.send.SendBatch(ctx, bodies, commonProps)
}

// Receive pulls up to n messages and resolves each one.
func (c *Client) Receive(ctx context.Context, n int, waitTime time.Duration) ([]Resolved, error) {
	return c.receive.Receive(ctx, n, waitTime)
}

// DeletePayload reclaims the blob backing a resolved message, if any.
// Failures are logged and never surfaced to the caller.
func (c *Client) DeletePayload(ctx context.Context, resolved Resolved) {
	c.life.DeletePayload(ctx, resolved)
}

// DeletePayloadBatch reclaims the blobs backing every resolved message
// and tallies the outcome.
func (c *Client) DeletePayloadBatch(ctx context.Context, messages []Resolved) DeleteTally {
	return c.life.DeletePayloadBatch(ctx, messages)
}

// RenewLock passes a lock-renewal request through to the broker.
func (c *Client) RenewLock(ctx context.Context, resolved Resolved) error {
	return c.life.RenewLock(ctx, resolved)
}

// RenewLockBatch renews every message's lock, isolating per-message failures.
func (c *Client) RenewLockBatch(ctx context.Context, messages []Resolved) DeleteTally {
	return c.life.RenewLockBatch(ctx, messages)
}

// StartProcessor installs a push-style handler on queue, resolving each
// delivered message before calling handler. The message is completed
// only when handler returns nil; on error it is abandoned, and
// dead-lettered once its delivery count exceeds Config.MaxDeliveryCount.
// At most one processor runs per client: a prior processor is stopped
// before the new one starts.
func (c *Client) StartProcessor(ctx context.Context, queue string, handler ProcessorHandler, onError ProcessorErrorHandler) error {
	if c.builder == nil {
		return ErrConfigInvalid("no processor builder configured for this client", nil)
	}

	c.mu.Lock()
	prior := c.processor
	c.mu.Unlock()
	if prior != nil {
		if err := prior.Stop(ctx); err != nil {
			logger.L().WarnContext(ctx, "failed to stop prior claim-check processor", "error", err)
		}
	}

	proc, err := c.builder.NewProcessor(queue)
	if err != nil {
		return ErrConfigInvalid("failed to build processor", err)
	}

	c.mu.Lock()
	c.processor = proc
	c.mu.Unlock()

	wrapper := newProcessWrapper(c.cfg, &c.receive, handler, onError)
	return proc.Start(ctx, wrapper.handle)
}

// StopProcessor stops the active processor, if any.
func (c *Client) StopProcessor(ctx context.Context) error {
	c.mu.Lock()
	proc := c.processor
	c.processor = nil
	c.mu.Unlock()
	if proc == nil {
		return nil
	}
	return proc.Stop(ctx)
}

// Close tears down the processor (if any), then the sender, then the
// receiver, matching spec.md's close order. Behaviour of subsequent
// calls on the client after Close is undefined.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	proc := c.processor
	c.processor = nil
	c.mu.Unlock()

	if proc != nil {
		if err := proc.Stop(ctx); err != nil {
			logger.L().WarnContext(ctx, "failed to stop claim-check processor during close", "error", err)
		}
	}
	if err := c.sender.Close(ctx); err != nil {
		logger.L().WarnContext(ctx, "failed to close claim-check sender", "error", err)
	}
	if err := c.receiver.Close(ctx); err != nil {
		logger.L().WarnContext(ctx, "failed to close claim-check receiver", "error", err)
	}
	return nil
}
