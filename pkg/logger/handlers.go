package logger

import (
	"context"
	"log/slog"
	"math/rand"
	"regexp"
	"sync"
)

// AsyncHandler buffers log records on a channel and writes them from a
// single background goroutine, so callers never block on handler I/O.
// When the buffer is full, DropOnFull controls whether new records are
// dropped (true) or the caller blocks until space frees up (false).
type AsyncHandler struct {
	next       slog.Handler
	records    chan slog.Record
	dropOnFull bool
}

// NewAsyncHandler wraps next with a buffered, single-writer queue.
func NewAsyncHandler(next slog.Handler, bufferSize int, dropOnFull bool) *AsyncHandler {
	h := &AsyncHandler{
		next:       next,
		records:    make(chan slog.Record, bufferSize),
		dropOnFull: dropOnFull,
	}
	go h.drain()
	return h
}

func (h *AsyncHandler) drain() {
	for r := range h.records {
		_ = h.next.Handle(context.Background(), r)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.dropOnFull {
		select {
		case h.records <- r.Clone():
		default:
			// buffer full: drop rather than block the caller
		}
		return nil
	}
	h.records <- r.Clone()
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), records: h.records, dropOnFull: h.dropOnFull}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), records: h.records, dropOnFull: h.dropOnFull}
}

// SamplingHandler drops a fraction of records before they reach next,
// so high-volume call sites don't flood the sink.
type SamplingHandler struct {
	next slog.Handler
	rate float64
	mu   sync.Mutex
	rng  *rand.Rand
}

// NewSamplingHandler keeps roughly `rate` (0..1) of incoming records.
func NewSamplingHandler(next slog.Handler, rate float64) *SamplingHandler {
	return &SamplingHandler{next: next, rate: rate, rng: rand.New(rand.NewSource(1))}
}

func (h *SamplingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SamplingHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	keep := h.rng.Float64() < h.rate
	h.mu.Unlock()
	if !keep {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *SamplingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SamplingHandler{next: h.next.WithAttrs(attrs), rate: h.rate, rng: h.rng}
}

func (h *SamplingHandler) WithGroup(name string) slog.Handler {
	return &SamplingHandler{next: h.next.WithGroup(name), rate: h.rate, rng: h.rng}
}

// RedactHandler masks attribute values that look like PII (emails, card
// numbers) before they reach next.
type RedactHandler struct {
	next slog.Handler
}

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]?){13,19}\b`)
)

// NewRedactHandler wraps next with PII redaction.
func NewRedactHandler(next slog.Handler) *RedactHandler {
	return &RedactHandler{next: next}
}

func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	redacted := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		redacted.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, redacted)
}

func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	s := a.Value.String()
	if emailPattern.MatchString(s) {
		return slog.String(a.Key, emailPattern.ReplaceAllString(s, "[redacted-email]"))
	}
	if cardPattern.MatchString(s) {
		return slog.String(a.Key, cardPattern.ReplaceAllString(s, "[redacted-number]"))
	}
	return a
}

func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = redactAttr(a)
	}
	return &RedactHandler{next: h.next.WithAttrs(out)}
}

func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{next: h.next.WithGroup(name)}
}
