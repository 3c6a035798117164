package memory

import (
	"context"
	"time"

	"github.com/azsbx/extended-client/pkg/claimcheck"
)

// ProcessorBuilder builds Processors that pull from a Broker, for
// exercising claimcheck.Client.StartProcessor without a real broker.
type ProcessorBuilder struct {
	broker *Broker
}

// NewProcessorBuilder creates a builder bound to broker.
func NewProcessorBuilder(broker *Broker) *ProcessorBuilder {
	return &ProcessorBuilder{broker: broker}
}

// NewProcessor implements claimcheck.ProcessorBuilder. queue is accepted
// for interface compatibility; this in-memory broker has a single
// implicit queue.
func (b *ProcessorBuilder) NewProcessor(queue string) (claimcheck.Processor, error) {
	return &processor{broker: b.broker}, nil
}

type processor struct {
	broker *Broker
	cancel context.CancelFunc
}

func (p *processor) Start(ctx context.Context, handler claimcheck.RawProcessorHandler) error {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			msgs, err := p.broker.Receive(ctx, 1, 200*time.Millisecond)
			if err != nil || len(msgs) == 0 {
				continue
			}
			switch handler(ctx, msgs[0]) {
			case claimcheck.OutcomeComplete:
				_ = p.broker.Complete(ctx, msgs[0])
			case claimcheck.OutcomeAbandon:
				_ = p.broker.Abandon(ctx, msgs[0])
			case claimcheck.OutcomeDeadLetter:
				_ = p.broker.DeadLetter(ctx, msgs[0], "max delivery count exceeded")
			}
		}
	}()
	return nil
}

func (p *processor) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	return nil
}
