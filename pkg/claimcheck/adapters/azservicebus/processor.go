package azservicebus

import (
	"context"
	"time"

	"github.com/azsbx/extended-client/pkg/claimcheck"
	"github.com/azsbx/extended-client/pkg/logger"
)

// pollInterval bounds how long a single receive call waits before the
// processor loop checks for cancellation again.
const pollInterval = 5 * time.Second

// ProcessorBuilder constructs push-style processors over a Transport.
// The Go Service Bus SDK has no built-in push-processor type (unlike
// the predecessor Java SDK), so this adapts the blocking receive loop
// into one.
type ProcessorBuilder struct {
	transport *Transport
}

// NewProcessorBuilder creates a builder bound to transport. queue is
// accepted by NewProcessor for interface compatibility; transport is
// already bound to a specific queue at construction.
func NewProcessorBuilder(transport *Transport) *ProcessorBuilder {
	return &ProcessorBuilder{transport: transport}
}

// NewProcessor implements claimcheck.ProcessorBuilder.
func (b *ProcessorBuilder) NewProcessor(queue string) (claimcheck.Processor, error) {
	return &processor{transport: b.transport}, nil
}

type processor struct {
	transport *Transport
	cancel    context.CancelFunc
}

// Start implements claimcheck.Processor: it polls Receive in a loop,
// dispatching each message to handler and acting on the returned
// ProcessOutcome through the transport's Complete/Abandon/DeadLetter.
func (p *processor) Start(ctx context.Context, handler claimcheck.RawProcessorHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	go func() {
		for ctx.Err() == nil {
			messages, err := p.transport.Receive(ctx, 1, pollInterval)
			if err != nil {
				logger.L().ErrorContext(ctx, "claim-check processor receive failed", "error", err)
				continue
			}
			for _, m := range messages {
				p.dispatch(ctx, m, handler)
			}
		}
	}()
	return nil
}

func (p *processor) dispatch(ctx context.Context, msg claimcheck.IncomingMessage, handler claimcheck.RawProcessorHandler) {
	var ackErr error
	switch handler(ctx, msg) {
	case claimcheck.OutcomeComplete:
		ackErr = p.transport.Complete(ctx, msg)
	case claimcheck.OutcomeAbandon:
		ackErr = p.transport.Abandon(ctx, msg)
	case claimcheck.OutcomeDeadLetter:
		ackErr = p.transport.DeadLetter(ctx, msg, "max delivery count exceeded")
	}
	if ackErr != nil {
		logger.L().ErrorContext(ctx, "claim-check processor ack failed", "error", ackErr)
	}
}

// Stop implements claimcheck.Processor. Idempotent.
func (p *processor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}
