package claimcheck

import (
	"context"
	"errors"
	"time"

	"github.com/azsbx/extended-client/pkg/events"
	"github.com/azsbx/extended-client/pkg/logger"
)

// Resolved is the message handed to application code after C7 has
// detected and undone any offload. PayloadFromBlob indicates whether
// Pointer is non-nil and cleanup via deletePayload is possible.
type Resolved struct {
	MessageID       string
	Body            []byte
	Properties      map[string]string
	PayloadFromBlob bool
	Pointer         *Pointer

	// raw is the broker-specific handle needed for lock renewal and ack.
	raw any
}

// receivePipeline implements C7: marker detection, pointer decode, blob
// fetch, and property sanitisation.
type receivePipeline struct {
	cfg      *Config
	store    PayloadStore
	receiver Receiver
	bus      events.Bus
}

// Receive pulls up to n messages and resolves each one independently; a
// resolve failure (decode or blob fetch) on one message is logged and
// that message is dropped, but every other message in the fetch is
// still resolved and returned. The returned error, when non-nil, joins
// every per-message failure so callers can still detect that at least
// one message in the fetch was lost.
func (p *receivePipeline) Receive(ctx context.Context, n int, waitTime time.Duration) ([]Resolved, error) {
	incoming, err := p.receiver.Receive(ctx, n, waitTime)
	if err != nil {
		return nil, ErrReceiveFailed(err)
	}

	resolved := make([]Resolved, 0, len(incoming))
	var failures []error
	for _, m := range incoming {
		r, err := p.resolve(ctx, m)
		if err != nil {
			logger.L().ErrorContext(ctx, "claim-check message resolve failed", "message_id", m.ID, "error", err)
			failures = append(failures, err)
			continue
		}
		resolved = append(resolved, r)
	}
	if len(failures) > 0 {
		return resolved, ErrReceiveFailed(errors.Join(failures...))
	}
	return resolved, nil
}

// resolve undoes the offload (if any) on a single incoming message.
func (p *receivePipeline) resolve(ctx context.Context, m IncomingMessage) (Resolved, error) {
	properties := make(map[string]string, len(m.Properties))
	for k, v := range m.Properties {
		properties[k] = v
	}

	if !p.cfg.PayloadSupportEnabled {
		stripReservedProperties(properties)
		return Resolved{MessageID: m.ID, Body: m.Body, Properties: properties, raw: m.Raw}, nil
	}

	fromBlob := properties[ReservedPointerKey] == pointerMarkerValue

	var body []byte
	var pointer *Pointer
	if fromBlob {
		decoded, err := DecodePointer(m.Body)
		if err != nil {
			return Resolved{}, err
		}
		pointer = &decoded

		fetched, err := p.store.Get(ctx, decoded, p.cfg.IgnorePayloadNotFound)
		if err != nil {
			return Resolved{}, err
		}
		if fetched == nil {
			fetched = []byte{}
		}
		body = fetched
	} else {
		body = m.Body
	}

	stripReservedProperties(properties)

	if fromBlob {
		p.publishResolved(ctx, m.ID, *pointer)
	}

	return Resolved{
		MessageID:       m.ID,
		Body:            body,
		Properties:      properties,
		PayloadFromBlob: fromBlob,
		Pointer:         pointer,
		raw:             m.Raw,
	}, nil
}

// publishResolved fires an events.Bus notification that a pointer was
// resolved back to its blob body, mirroring publishOffloaded on the
// send side.
func (p *receivePipeline) publishResolved(ctx context.Context, messageID string, pointer Pointer) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(ctx, eventTopic, events.Event{
		Type:   eventTypeResolved,
		Source: "claimcheck",
		Payload: map[string]any{
			"message_id": messageID,
			"container":  pointer.Container,
			"key":        pointer.Key,
		},
	})
}

// stripReservedProperties removes exactly the four reserved keys from
// the resolved message's property map, regardless of which size-marker
// spelling is currently selected (defensive: strips both).
func stripReservedProperties(properties map[string]string) {
	delete(properties, ReservedSizeKeyModern)
	delete(properties, ReservedSizeKeyLegacy)
	delete(properties, ReservedPointerKey)
	delete(properties, ReservedUserAgentKey)
}
