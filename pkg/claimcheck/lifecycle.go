package claimcheck

import (
	"context"

	"github.com/azsbx/extended-client/pkg/events"
	"github.com/azsbx/extended-client/pkg/logger"
)

// DeleteTally summarises a batch cleanup or lock-renew call: one
// entry's failure never stops the remaining ones, so the caller gets a
// count instead of a short-circuited error.
type DeleteTally struct {
	Succeeded int
	Skipped   int
	Failed    int
}

// lifecycle implements C8: post-ack blob cleanup and lock-renewal
// passthrough, both isolating per-message failures.
type lifecycle struct {
	cfg      *Config
	store    PayloadStore
	receiver Receiver
	bus      events.Bus
}

// handleOf reconstructs the broker-specific handle carried by a
// Resolved message, for lifecycle calls that need it.
func (r Resolved) handleOf() IncomingMessage {
	return IncomingMessage{ID: r.MessageID, Raw: r.raw}
}

// DeletePayload reclaims the blob backing a resolved message, if any.
// Cleanup failures are logged and swallowed: the message-processing
// path must not be coupled to the blob backend's availability once the
// message itself has been acknowledged.
func (l *lifecycle) DeletePayload(ctx context.Context, resolved Resolved) {
	if !l.cfg.CleanupBlobOnDelete || !resolved.PayloadFromBlob || resolved.Pointer == nil {
		return
	}
	if err := l.store.Delete(ctx, *resolved.Pointer); err != nil {
		logger.L().ErrorContext(ctx, "claim-check blob cleanup failed",
			"message_id", resolved.MessageID, "error", err)
		return
	}
	l.publishDeleted(ctx, resolved.MessageID, *resolved.Pointer)
}

// publishDeleted fires an events.Bus notification that a blob was
// reclaimed, mirroring publishOffloaded/publishResolved.
func (l *lifecycle) publishDeleted(ctx context.Context, messageID string, pointer Pointer) {
	if l.bus == nil {
		return
	}
	_ = l.bus.Publish(ctx, eventTopic, events.Event{
		Type:   eventTypePayloadDeleted,
		Source: "claimcheck",
		Payload: map[string]any{
			"message_id": messageID,
			"container":  pointer.Container,
			"key":        pointer.Key,
		},
	})
}

// DeletePayloadBatch applies DeletePayload to every message and tallies
// the outcome. When cleanup is disabled globally, the entire call is a
// no-op and every entry counts as skipped.
func (l *lifecycle) DeletePayloadBatch(ctx context.Context, messages []Resolved) DeleteTally {
	tally := DeleteTally{}
	if !l.cfg.CleanupBlobOnDelete {
		tally.Skipped = len(messages)
		return tally
	}
	for _, m := range messages {
		if !m.PayloadFromBlob || m.Pointer == nil {
			tally.Skipped++
			continue
		}
		if err := l.store.Delete(ctx, *m.Pointer); err != nil {
			logger.L().ErrorContext(ctx, "claim-check blob cleanup failed",
				"message_id", m.MessageID, "error", err)
			tally.Failed++
			continue
		}
		l.publishDeleted(ctx, m.MessageID, *m.Pointer)
		tally.Succeeded++
	}
	return tally
}

// RenewLock passes through to the broker transport.
func (l *lifecycle) RenewLock(ctx context.Context, resolved Resolved) error {
	return l.receiver.RenewLock(ctx, resolved.handleOf())
}

// RenewLockBatch renews each message's lock independently, isolating
// per-message failures into the same tally shape as delete.
func (l *lifecycle) RenewLockBatch(ctx context.Context, messages []Resolved) DeleteTally {
	tally := DeleteTally{}
	for _, m := range messages {
		if err := l.receiver.RenewLock(ctx, m.handleOf()); err != nil {
			logger.L().ErrorContext(ctx, "claim-check lock renewal failed",
				"message_id", m.MessageID, "error", err)
			tally.Failed++
			continue
		}
		tally.Succeeded++
	}
	return tally
}
