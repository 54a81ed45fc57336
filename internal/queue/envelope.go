package queue

import (
	"context"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
)

// Tier names the three dispatch lanes. It is derived from the message
// priority so producers never pick a lane directly.
type Tier string

const (
	TierHigh   Tier = "high"
	TierNormal Tier = "normal"
	TierLow    Tier = "low"

	highPriorityFloor = 8
	lowPriorityCeil   = 3
)

// Envelope is the unit placed on the queue. It carries the full message so
// workers can dispatch without a read-back from storage.
//
// Channel is empty for a normal dispatch across all resolved channels. A
// retry targets the single channel that failed, with Attempt counting the
// deliveries already tried.
type Envelope struct {
	ID         string         `json:"id"`
	Message    domain.Message `json:"message"`
	Channel    string         `json:"channel,omitempty"`
	Attempt    int            `json:"attempt"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// TierOf maps a message priority to its lane.
func TierOf(msg domain.Message) Tier {
	switch {
	case msg.Priority >= highPriorityFloor:
		return TierHigh
	case msg.Priority <= lowPriorityCeil:
		return TierLow
	default:
		return TierNormal
	}
}

// Transport is the asynchronous boundary between producers (the HTTP API)
// and the worker pool. Implementations must serve high-tier envelopes
// before normal and low ones.
type Transport interface {
	// Enqueue places an envelope on the lane matching its message priority.
	// It must not block; a saturated lane returns domain.ErrQueueFull.
	Enqueue(ctx context.Context, env Envelope) error

	// Dequeue blocks until an envelope is available or ctx is cancelled.
	// Returns (Envelope{}, false) on cancellation.
	Dequeue(ctx context.Context) (Envelope, bool)

	// Depths reports the number of envelopes waiting per tier.
	Depths(ctx context.Context) (high, normal, low int)
}
