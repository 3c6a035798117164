package claimcheck

import (
	"context"
	"sync"

	"github.com/azsbx/extended-client/pkg/logger"
)

// processWrapper adapts a raw, per-message Processor delivery into the
// resolve-then-handle-then-ack sequence spec.md describes: the message
// is completed only on handler success; on handler (or resolve)
// failure it is abandoned, and dead-lettered once its delivery count
// exceeds Config.MaxDeliveryCount.
type processWrapper struct {
	cfg     *Config
	receive *receivePipeline
	handler ProcessorHandler
	onError ProcessorErrorHandler

	mu   sync.Mutex
	tries map[string]int
}

func newProcessWrapper(cfg *Config, receive *receivePipeline, handler ProcessorHandler, onError ProcessorErrorHandler) *processWrapper {
	return &processWrapper{cfg: cfg, receive: receive, handler: handler, onError: onError, tries: make(map[string]int)}
}

func (w *processWrapper) handle(ctx context.Context, raw IncomingMessage) ProcessOutcome {
	resolved, err := w.receive.resolve(ctx, raw)
	if err != nil {
		w.reportError(ctx, ErrReceiveFailed(err))
		return w.outcomeFor(raw.ID)
	}

	if err := w.handler(ctx, resolved); err != nil {
		w.reportError(ctx, err)
		return w.outcomeFor(raw.ID)
	}

	w.clearTries(raw.ID)
	return OutcomeComplete
}

func (w *processWrapper) outcomeFor(id string) ProcessOutcome {
	w.mu.Lock()
	w.tries[id]++
	exceeded := w.tries[id] > w.cfg.MaxDeliveryCount
	w.mu.Unlock()
	if exceeded {
		return OutcomeDeadLetter
	}
	return OutcomeAbandon
}

func (w *processWrapper) clearTries(id string) {
	w.mu.Lock()
	delete(w.tries, id)
	w.mu.Unlock()
}

func (w *processWrapper) reportError(ctx context.Context, err error) {
	if w.onError != nil {
		w.onError(ctx, err)
		return
	}
	logger.L().ErrorContext(ctx, "claim-check processor handler failed", "error", err)
}
