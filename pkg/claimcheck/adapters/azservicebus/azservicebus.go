// Package azservicebus adapts Azure Service Bus into the Sender,
// Receiver and ProcessorBuilder capability interfaces pkg/claimcheck
// depends on.
package azservicebus

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/azsbx/extended-client/pkg/claimcheck"
)

// Transport wraps one azservicebus sender and one receiver bound to the
// same queue/topic, implementing both claimcheck.Sender and
// claimcheck.Receiver.
type Transport struct {
	client   *azservicebus.Client
	sender   *azservicebus.Sender
	receiver *azservicebus.Receiver
}

// New constructs a Transport for queue, opening both a sender and a
// receiver from client.
func New(ctx context.Context, client *azservicebus.Client, queue string) (*Transport, error) {
	sender, err := client.NewSender(queue, nil)
	if err != nil {
		return nil, claimcheck.ErrBackendFailure("failed to create service bus sender", err)
	}
	receiver, err := client.NewReceiverForQueue(queue, nil)
	if err != nil {
		return nil, claimcheck.ErrBackendFailure("failed to create service bus receiver", err)
	}
	return &Transport{client: client, sender: sender, receiver: receiver}, nil
}

// Send implements claimcheck.Sender.
func (t *Transport) Send(ctx context.Context, msg claimcheck.OutgoingMessage) error {
	return t.sender.SendMessage(ctx, toSBMessage(msg), nil)
}

// NewBatch implements claimcheck.Sender.
func (t *Transport) NewBatch(ctx context.Context) (claimcheck.Batch, error) {
	b, err := t.sender.NewMessageBatch(ctx, nil)
	if err != nil {
		return nil, claimcheck.ErrBackendFailure("failed to open service bus batch", err)
	}
	return &batch{inner: b}, nil
}

// SendBatch implements claimcheck.Sender.
func (t *Transport) SendBatch(ctx context.Context, b claimcheck.Batch) error {
	mb := b.(*batch)
	return t.sender.SendMessageBatch(ctx, mb.inner)
}

// Receive implements claimcheck.Receiver.
func (t *Transport) Receive(ctx context.Context, maxMessages int, waitTime time.Duration) ([]claimcheck.IncomingMessage, error) {
	recvCtx := ctx
	var cancel context.CancelFunc
	if waitTime > 0 {
		recvCtx, cancel = context.WithTimeout(ctx, waitTime)
		defer cancel()
	}

	messages, err := t.receiver.ReceiveMessages(recvCtx, maxMessages, nil)
	if err != nil {
		return nil, claimcheck.ErrBackendFailure("failed to receive service bus messages", err)
	}

	out := make([]claimcheck.IncomingMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, toIncoming(m))
	}
	return out, nil
}

// RenewLock implements claimcheck.Receiver.
func (t *Transport) RenewLock(ctx context.Context, msg claimcheck.IncomingMessage) error {
	sb, ok := msg.Raw.(*azservicebus.ReceivedMessage)
	if !ok {
		return claimcheck.ErrBackendFailure("message has no service bus handle to renew", nil)
	}
	return t.receiver.RenewMessageLock(ctx, sb, nil)
}

// Complete implements claimcheck.Receiver.
func (t *Transport) Complete(ctx context.Context, msg claimcheck.IncomingMessage) error {
	sb, ok := msg.Raw.(*azservicebus.ReceivedMessage)
	if !ok {
		return claimcheck.ErrBackendFailure("message has no service bus handle to complete", nil)
	}
	return t.receiver.CompleteMessage(ctx, sb, nil)
}

// Abandon implements claimcheck.Receiver.
func (t *Transport) Abandon(ctx context.Context, msg claimcheck.IncomingMessage) error {
	sb, ok := msg.Raw.(*azservicebus.ReceivedMessage)
	if !ok {
		return claimcheck.ErrBackendFailure("message has no service bus handle to abandon", nil)
	}
	return t.receiver.AbandonMessage(ctx, sb, nil)
}

// DeadLetter implements claimcheck.Receiver.
func (t *Transport) DeadLetter(ctx context.Context, msg claimcheck.IncomingMessage, reason string) error {
	sb, ok := msg.Raw.(*azservicebus.ReceivedMessage)
	if !ok {
		return claimcheck.ErrBackendFailure("message has no service bus handle to dead-letter", nil)
	}
	return t.receiver.DeadLetterMessage(ctx, sb, &azservicebus.DeadLetterOptions{
		Reason: &reason,
	})
}

// Close implements claimcheck.Sender and claimcheck.Receiver, closing
// the sender then the receiver.
func (t *Transport) Close(ctx context.Context) error {
	if err := t.sender.Close(ctx); err != nil {
		return claimcheck.ErrBackendFailure("failed to close service bus sender", err)
	}
	return t.receiver.Close(ctx)
}

func toSBMessage(msg claimcheck.OutgoingMessage) *azservicebus.Message {
	props := make(map[string]any, len(msg.Properties))
	for k, v := range msg.Properties {
		props[k] = v
	}
	return &azservicebus.Message{
		Body:                  msg.Body,
		ApplicationProperties: props,
	}
}

func toIncoming(m *azservicebus.ReceivedMessage) claimcheck.IncomingMessage {
	props := make(map[string]string, len(m.ApplicationProperties))
	for k, v := range m.ApplicationProperties {
		if s, ok := v.(string); ok {
			props[k] = s
		}
	}
	return claimcheck.IncomingMessage{
		ID:         m.MessageID,
		Body:       m.Body,
		Properties: props,
		Raw:        m,
	}
}

// batch adapts *azservicebus.MessageBatch to claimcheck.Batch.
type batch struct {
	inner *azservicebus.MessageBatch
}

func (b *batch) TryAdd(msg claimcheck.OutgoingMessage) bool {
	err := b.inner.AddMessage(toSBMessage(msg), nil)
	return err == nil
}

func (b *batch) Len() int {
	return int(b.inner.NumMessages())
}
