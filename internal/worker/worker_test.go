package worker_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/queue"
	"github.com/fidelize/notifyd/internal/worker"
)

type fakeDispatcher struct {
	mu              sync.Mutex
	dispatchResults []domain.DispatchResult
	directResults   []domain.DeliveryResult
	dispatched      []domain.Message
	direct          []string
}

func (f *fakeDispatcher) Dispatch(_ context.Context, msg domain.Message) domain.DispatchResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, msg)
	if len(f.dispatchResults) == 0 {
		return domain.NoChannelsAvailable(msg)
	}
	res := f.dispatchResults[0]
	f.dispatchResults = f.dispatchResults[1:]
	return res
}

func (f *fakeDispatcher) DispatchToChannel(_ context.Context, _ domain.Message, channelID string) domain.DeliveryResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direct = append(f.direct, channelID)
	if len(f.directResults) == 0 {
		return domain.Delivered(channelID, "ext", nil)
	}
	res := f.directResults[0]
	f.directResults = f.directResults[1:]
	return res
}

type recordingRetryer struct {
	mu        sync.Mutex
	scheduled []queue.Envelope
}

func (r *recordingRetryer) Schedule(env queue.Envelope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scheduled = append(r.scheduled, env)
}

func (r *recordingRetryer) all() []queue.Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Envelope(nil), r.scheduled...)
}

func testMessage() domain.Message {
	return domain.Message{RecipientID: "u1", Type: "welcome", Title: "t", Body: "b", Priority: 5}
}

func resultWith(msg domain.Message, results map[string]domain.DeliveryResult) domain.DispatchResult {
	return domain.NewDispatchResult(msg, results)
}

// runOne starts a worker, waits for it to drain the transport, and stops it.
func runOne(t *testing.T, transport queue.Transport, d worker.Dispatcher, r worker.Retryer) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	w := worker.NewWorker(0, transport, d, r, zap.NewNop(), nil)

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		high, normal, low := transport.Depths(ctx)
		if high+normal+low == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("transport did not drain")
		case <-time.After(10 * time.Millisecond):
		}
	}
	// Give the worker a beat to finish the in-flight envelope.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_SchedulesRetryForRetryableFailures(t *testing.T) {
	msg := testMessage()
	dispatcher := &fakeDispatcher{dispatchResults: []domain.DispatchResult{
		resultWith(msg, map[string]domain.DeliveryResult{
			"in_app": domain.Delivered("in_app", "n1", nil),
			"email":  domain.DeliveryFailed("email", domain.CodeRateLimited, "429"),
			"sms":    domain.DeliveryFailed("sms", domain.CodeInvalidPhoneNumber, "bad number"),
		}),
	}}
	retryer := &recordingRetryer{}

	q := queue.NewMemoryTransport()
	_ = q.Enqueue(context.Background(), queue.Envelope{ID: "e1", Message: msg})

	runOne(t, q, dispatcher, retryer)

	scheduled := retryer.all()
	if len(scheduled) != 1 {
		t.Fatalf("expected one retry (only the rate-limited failure), got %d", len(scheduled))
	}
	if scheduled[0].Channel != "email" || scheduled[0].Attempt != 1 {
		t.Fatalf("unexpected retry envelope: %+v", scheduled[0])
	}
}

func TestWorker_TargetedEnvelopeUsesDirectDispatch(t *testing.T) {
	msg := testMessage()
	dispatcher := &fakeDispatcher{}
	retryer := &recordingRetryer{}

	q := queue.NewMemoryTransport()
	_ = q.Enqueue(context.Background(), queue.Envelope{ID: "e1", Message: msg, Channel: "sms", Attempt: 1})

	runOne(t, q, dispatcher, retryer)

	if len(dispatcher.dispatched) != 0 {
		t.Fatal("a targeted envelope must not run the full dispatch")
	}
	if len(dispatcher.direct) != 1 || dispatcher.direct[0] != "sms" {
		t.Fatalf("expected one direct sms dispatch, got %v", dispatcher.direct)
	}
	if len(retryer.all()) != 0 {
		t.Fatal("a successful retry must not schedule another")
	}
}

func TestWorker_FailedRetryReschedulesWithIncrementedAttempt(t *testing.T) {
	msg := testMessage()
	dispatcher := &fakeDispatcher{directResults: []domain.DeliveryResult{
		domain.DeliveryFailed("sms", domain.CodeTimeout, "deadline"),
	}}
	retryer := &recordingRetryer{}

	q := queue.NewMemoryTransport()
	_ = q.Enqueue(context.Background(), queue.Envelope{ID: "e1", Message: msg, Channel: "sms", Attempt: 1})

	runOne(t, q, dispatcher, retryer)

	scheduled := retryer.all()
	if len(scheduled) != 1 || scheduled[0].Attempt != 2 {
		t.Fatalf("expected reschedule with attempt=2, got %v", scheduled)
	}
}

func TestRetryScheduler_ReEnqueuesAfterBackoff(t *testing.T) {
	q := queue.NewMemoryTransport()
	s := worker.NewRetryScheduler(q, []time.Duration{10 * time.Millisecond}, 3, zap.NewNop())

	s.Schedule(queue.Envelope{Message: testMessage(), Channel: "email", Attempt: 1})

	deadline := time.After(time.Second)
	for {
		high, normal, low := q.Depths(context.Background())
		if high+normal+low == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("retry was never re-enqueued")
		case <-time.After(5 * time.Millisecond):
		}
	}

	env, _ := q.Dequeue(context.Background())
	if env.Channel != "email" || env.Attempt != 1 {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.ID == "" {
		t.Fatal("re-enqueued envelope should get a fresh id")
	}
}

func TestRetryScheduler_DropsExhaustedAttempts(t *testing.T) {
	q := queue.NewMemoryTransport()
	s := worker.NewRetryScheduler(q, []time.Duration{time.Millisecond}, 3, zap.NewNop())

	s.Schedule(queue.Envelope{Message: testMessage(), Channel: "email", Attempt: 3})

	if s.Pending() != 0 {
		t.Fatal("exhausted retry must not arm a timer")
	}
}

func TestRetryScheduler_StopCancelsPendingTimers(t *testing.T) {
	q := queue.NewMemoryTransport()
	s := worker.NewRetryScheduler(q, []time.Duration{time.Hour}, 3, zap.NewNop())

	s.Schedule(queue.Envelope{Message: testMessage(), Channel: "email", Attempt: 1})
	if s.Pending() != 1 {
		t.Fatalf("expected one pending timer, got %d", s.Pending())
	}

	s.Stop()
	if s.Pending() != 0 {
		t.Fatal("Stop should cancel all timers")
	}
}

func TestPool_StartAndDrain(t *testing.T) {
	msg := testMessage()
	dispatcher := &fakeDispatcher{}
	q := queue.NewMemoryTransport()
	for i := 0; i < 5; i++ {
		_ = q.Enqueue(context.Background(), queue.Envelope{ID: "e", Message: msg, Channel: "in_app"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := worker.NewPool(3, q, dispatcher, nil, zap.NewNop(), worker.MetricHooks{})
	pool.Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		dispatcher.mu.Lock()
		n := len(dispatcher.direct)
		dispatcher.mu.Unlock()
		if n == 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("pool processed %d of 5 envelopes", n)
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	pool.Wait()
}
