package claimcheck

import (
	"context"
	"strconv"

	"github.com/azsbx/extended-client/pkg/concurrency"
	"github.com/azsbx/extended-client/pkg/events"
	"github.com/google/uuid"
)

// prepareFanOut bounds how many bodies in one SendBatch call have their
// offload decision (and, for oversized ones, their blob put) evaluated
// concurrently. Batch packing afterwards stays strictly sequential so
// message order on the wire matches the order bodies were given in.
const prepareFanOut = 8

// sendPipeline implements C6: per-message offload decision, blob put,
// pointer encoding, property validation and merging. It is embedded in
// Client and reused by the async surface in async.go.
type sendPipeline struct {
	cfg    *Config
	store  PayloadStore
	sender Sender
	bus    events.Bus
}

// Send offloads body to the payload store when the offload decision
// says to, then hands a single message to the broker.
func (p *sendPipeline) Send(ctx context.Context, body []byte, userProps map[string]string) error {
	msg, err := p.prepare(ctx, body, userProps)
	if err != nil {
		return ErrSendFailed(err)
	}
	if err := p.sender.Send(ctx, msg); err != nil {
		return ErrSendFailed(err)
	}
	return nil
}

// prepare builds the outgoing message for one body, performing the
// offload put (if needed) but not sending it. Shared by Send and
// SendBatch so each body gets an independent, per-message evaluation.
func (p *sendPipeline) prepare(ctx context.Context, body []byte, userProps map[string]string) (OutgoingMessage, error) {
	if !p.cfg.PayloadSupportEnabled {
		return p.directMessage(body, userProps), nil
	}

	if err := ValidateProperties(userProps, reservedKeys(), p.cfg.MaxAllowedProperties, maxPropertyBytes(p.cfg)); err != nil {
		return OutgoingMessage{}, err
	}

	size := len(body)
	if !p.cfg.shouldOffload(size) {
		return p.directMessage(body, userProps), nil
	}

	key := p.cfg.BlobKeyPrefix() + uuid.NewString()
	pointer, err := p.store.Store(ctx, key, body, storeOptionsFrom(p.cfg))
	if err != nil {
		return OutgoingMessage{}, err
	}

	encoded, err := EncodePointer(pointer)
	if err != nil {
		return OutgoingMessage{}, err
	}

	p.publishOffloaded(ctx, pointer, size)

	props := mergeProperties(userProps, map[string]string{
		p.cfg.ReservedAttributeName(): strconv.Itoa(size),
		ReservedPointerKey:            pointerMarkerValue,
		ReservedUserAgentKey:          p.cfg.UserAgent,
	})
	return OutgoingMessage{Body: encoded, Properties: props}, nil
}

// directMessage builds the pass-through outgoing message for a body
// that is not (or cannot be, with the pipeline disabled) offloaded. The
// user-agent stamp is always applied here too: any core transformation,
// including direct pass-through, stamps it.
func (p *sendPipeline) directMessage(body []byte, userProps map[string]string) OutgoingMessage {
	props := mergeProperties(userProps, map[string]string{
		ReservedUserAgentKey: p.cfg.UserAgent,
	})
	return OutgoingMessage{Body: body, Properties: props}
}

// SendBatch packs each prepared message into byte-budgeted broker
// batches, flushing and opening a fresh batch whenever TryAdd refuses,
// and falling back to an individual send for a message too large for
// even a fresh batch.
func (p *sendPipeline) SendBatch(ctx context.Context, bodies [][]byte, commonProps map[string]string) error {
	prepared := make([]OutgoingMessage, len(bodies))
	prepErrs := make([]error, len(bodies))

	sem := concurrency.NewSemaphore(prepareFanOut)
	concurrency.FanOut(ctx, len(bodies), func(i int) {
		if err := sem.Acquire(ctx, 1); err != nil {
			prepErrs[i] = err
			return
		}
		defer sem.Release(1)

		msg, err := p.prepare(ctx, bodies[i], commonProps)
		if err != nil {
			prepErrs[i] = err
			return
		}
		prepared[i] = msg
	})
	for _, err := range prepErrs {
		if err != nil {
			return ErrSendFailed(err)
		}
	}

	batch, err := p.sender.NewBatch(ctx)
	if err != nil {
		return ErrSendFailed(err)
	}

	flush := func(b Batch) error {
		if b.Len() == 0 {
			return nil
		}
		return p.sender.SendBatch(ctx, b)
	}

	for _, msg := range prepared {
		if batch.TryAdd(msg) {
			continue
		}
		if err := flush(batch); err != nil {
			return ErrSendFailed(err)
		}
		batch, err = p.sender.NewBatch(ctx)
		if err != nil {
			return ErrSendFailed(err)
		}
		if batch.TryAdd(msg) {
			continue
		}
		// Too large even alone in a fresh batch: send individually.
		if err := p.sender.Send(ctx, msg); err != nil {
			return ErrSendFailed(err)
		}
	}

	if err := flush(batch); err != nil {
		return ErrSendFailed(err)
	}
	return nil
}

func maxPropertyBytes(cfg *Config) int {
	if cfg.MaxPropertyBytes > 0 {
		return cfg.MaxPropertyBytes
	}
	return DefaultMaxPropertyBytes
}

func storeOptionsFrom(cfg *Config) StoreOptions {
	return StoreOptions{
		AccessTier: cfg.BlobAccessTier,
		Encryption: cfg.Encryption,
		OrphanTTL:  cfg.OrphanTTL.String(),
	}
}

// publishOffloaded fires an events.Bus notification that a body was put
// to the payload store, for callers that want an observability hook
// without wrapping the whole client in a decorator. A missing bus is
// the common case and costs nothing beyond the nil check.
func (p *sendPipeline) publishOffloaded(ctx context.Context, pointer Pointer, size int) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(ctx, eventTopic, events.Event{
		Type:   eventTypeOffloaded,
		Source: "claimcheck",
		Payload: map[string]any{
			"container":  pointer.Container,
			"key":        pointer.Key,
			"body_bytes": size,
		},
	})
}

func mergeProperties(user map[string]string, core map[string]string) map[string]string {
	merged := make(map[string]string, len(user)+len(core))
	for k, v := range user {
		merged[k] = v
	}
	for k, v := range core {
		merged[k] = v
	}
	return merged
}
