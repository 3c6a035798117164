package claimcheck

import (
	"context"
	"time"

	"github.com/azsbx/extended-client/pkg/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedStore wraps a PayloadStore with logging and tracing
// around each I/O boundary: one span per call, with failures recorded
// on the span and logged.
type InstrumentedStore struct {
	next PayloadStore
}

// NewInstrumentedStore wraps next.
func NewInstrumentedStore(next PayloadStore) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) Store(ctx context.Context, key string, body []byte, opts StoreOptions) (Pointer, error) {
	ctx, span := s.startSpan(ctx, "Store")
	defer span.End()
	span.SetAttributes(attribute.String("claimcheck.key", key), attribute.Int("claimcheck.body_size", len(body)))

	start := time.Now()
	pointer, err := s.next.Store(ctx, key, body, opts)
	duration := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.L().ErrorContext(ctx, "claim-check blob store failed", "key", key, "error", err, "duration", duration)
		return Pointer{}, err
	}
	logger.L().DebugContext(ctx, "claim-check blob stored", "key", key, "duration", duration)
	return pointer, nil
}

func (s *InstrumentedStore) Get(ctx context.Context, pointer Pointer, ignoreNotFound bool) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("claimcheck.container", pointer.Container), attribute.String("claimcheck.key", pointer.Key))

	body, err := s.next.Get(ctx, pointer, ignoreNotFound)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.L().ErrorContext(ctx, "claim-check blob fetch failed", "key", pointer.Key, "error", err)
		return nil, err
	}
	return body, nil
}

func (s *InstrumentedStore) Delete(ctx context.Context, pointer Pointer) error {
	ctx, span := s.startSpan(ctx, "Delete")
	defer span.End()
	span.SetAttributes(attribute.String("claimcheck.container", pointer.Container), attribute.String("claimcheck.key", pointer.Key))

	err := s.next.Delete(ctx, pointer)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.L().ErrorContext(ctx, "claim-check blob delete failed", "key", pointer.Key, "error", err)
		return err
	}
	return nil
}

func (s *InstrumentedStore) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	tracer := otel.Tracer("pkg/claimcheck")
	return tracer.Start(ctx, "claimcheck.PayloadStore."+op)
}
