package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/queue"
)

func envelope(id string, priority int) queue.Envelope {
	return queue.Envelope{
		ID: id,
		Message: domain.Message{
			RecipientID: "u1",
			Type:        "welcome",
			Title:       "t",
			Body:        "b",
			Priority:    priority,
		},
		EnqueuedAt: time.Now(),
	}
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		priority int
		want     queue.Tier
	}{
		{10, queue.TierHigh},
		{8, queue.TierHigh},
		{7, queue.TierNormal},
		{5, queue.TierNormal},
		{4, queue.TierNormal},
		{3, queue.TierLow},
		{0, queue.TierLow},
	}
	for _, tt := range tests {
		msg := domain.Message{Priority: tt.priority}
		if got := queue.TierOf(msg); got != tt.want {
			t.Errorf("TierOf(priority=%d) = %s, want %s", tt.priority, got, tt.want)
		}
	}
}

func TestMemoryTransport_BasicEnqueueDequeue(t *testing.T) {
	q := queue.NewMemoryTransport()
	ctx := context.Background()

	if err := q.Enqueue(ctx, envelope("1", 5)); err != nil {
		t.Fatal(err)
	}

	got, ok := q.Dequeue(ctx)
	if !ok {
		t.Fatal("expected envelope, got nothing")
	}
	if got.ID != "1" {
		t.Fatalf("expected id=1, got %s", got.ID)
	}
}

// TestMemoryTransport_HighBeforeNormal verifies that a high-tier envelope
// inserted after a normal-tier one is still served first.
func TestMemoryTransport_HighBeforeNormal(t *testing.T) {
	q := queue.NewMemoryTransport()
	ctx := context.Background()

	_ = q.Enqueue(ctx, envelope("normal", 5))
	_ = q.Enqueue(ctx, envelope("high", 9))

	first, _ := q.Dequeue(ctx)
	if first.ID != "high" {
		t.Fatalf("expected high to be dequeued first, got %q", first.ID)
	}
}

// TestMemoryTransport_ContextCancellation verifies Dequeue returns (_, false)
// when the context is cancelled while blocking.
func TestMemoryTransport_ContextCancellation(t *testing.T) {
	q := queue.NewMemoryTransport()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue(ctx)
		done <- ok
	}()

	cancel()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected ok=false after context cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not return after context cancellation")
	}
}

func TestMemoryTransport_Depths(t *testing.T) {
	q := queue.NewMemoryTransport()
	ctx := context.Background()

	_ = q.Enqueue(ctx, envelope("a", 9))
	_ = q.Enqueue(ctx, envelope("b", 5))
	_ = q.Enqueue(ctx, envelope("c", 5))
	_ = q.Enqueue(ctx, envelope("d", 1))

	high, normal, low := q.Depths(ctx)
	if high != 1 || normal != 2 || low != 1 {
		t.Fatalf("unexpected depths: high=%d normal=%d low=%d", high, normal, low)
	}
}

// TestMemoryTransport_RetryEnvelopeRoundTrip checks the targeted-retry
// fields survive the queue unchanged.
func TestMemoryTransport_RetryEnvelopeRoundTrip(t *testing.T) {
	q := queue.NewMemoryTransport()
	ctx := context.Background()

	env := envelope("r1", 9)
	env.Channel = domain.ChannelSMS
	env.Attempt = 2
	_ = q.Enqueue(ctx, env)

	got, _ := q.Dequeue(ctx)
	if got.Channel != domain.ChannelSMS || got.Attempt != 2 {
		t.Fatalf("retry fields lost: %+v", got)
	}
}
