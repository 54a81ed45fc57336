package queue

import (
	"context"

	"github.com/fidelize/notifyd/internal/domain"
)

// MemoryTransport dispatches envelopes to one of three buffered channels
// based on message priority.
//
// Buffer sizes reflect expected traffic ratios:
//
//	High:   1 000  — must never accumulate; small buffer applies back-pressure quickly
//	Normal: 5 000  — bulk of traffic
//	Low:    2 000  — background / best-effort
//
// Workers dequeue via the double-select pattern, which guarantees that
// high-tier envelopes are always served before normal or low ones, while
// still allowing fair competition between normal and low when high is empty.
type MemoryTransport struct {
	high   chan Envelope
	normal chan Envelope
	low    chan Envelope
}

var _ Transport = (*MemoryTransport)(nil)

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		high:   make(chan Envelope, 1000),
		normal: make(chan Envelope, 5000),
		low:    make(chan Envelope, 2000),
	}
}

// Enqueue places an envelope on the appropriate lane.
// It is non-blocking: if the target lane is full, ErrQueueFull is returned
// immediately rather than blocking the caller (the HTTP handler).
func (q *MemoryTransport) Enqueue(_ context.Context, env Envelope) error {
	var lane chan Envelope
	switch TierOf(env.Message) {
	case TierHigh:
		lane = q.high
	case TierLow:
		lane = q.low
	default:
		lane = q.normal
	}
	select {
	case lane <- env:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue blocks until an envelope is available or ctx is cancelled.
//
// Priority guarantee — the double-select pattern:
//  1. A non-blocking select checks the high lane first. If an envelope is
//     waiting there, it is returned immediately regardless of normal/low.
//  2. Only when high is empty does the goroutine enter a fair blocking select
//     across all three lanes plus the done signal. This prevents high-tier
//     starvation while still letting the worker sleep instead of spinning.
//
// Returns (Envelope{}, false) when ctx is cancelled (graceful shutdown signal).
func (q *MemoryTransport) Dequeue(ctx context.Context) (Envelope, bool) {
	// Step 1: drain high before entering a fair wait.
	select {
	case env := <-q.high:
		return env, true
	default:
	}

	// Step 2: fair competition when high is empty.
	select {
	case env := <-q.high:
		return env, true
	case env := <-q.normal:
		return env, true
	case env := <-q.low:
		return env, true
	case <-ctx.Done():
		return Envelope{}, false
	}
}

// Depths returns the current number of envelopes waiting in each tier.
// Used by the queue snapshot handler.
func (q *MemoryTransport) Depths(context.Context) (high, normal, low int) {
	return len(q.high), len(q.normal), len(q.low)
}
