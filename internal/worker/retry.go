package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/queue"
)

// RetryScheduler re-enqueues a targeted envelope for a single failed channel
// after a backoff delay. Timers live in memory; a pending retry is lost on
// restart, which is acceptable for transient provider failures.
//
// Backoff is clamped to the last entry:
//
//	attempt 1 → backoff[0]  (default 5 s)
//	attempt 2 → backoff[1]  (default 30 s)
//	attempt N ≥ len(backoff) → last entry
type RetryScheduler struct {
	transport   queue.Transport
	backoff     []time.Duration
	maxAttempts int
	logger      *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRetryScheduler(transport queue.Transport, backoff []time.Duration, maxAttempts int, logger *zap.Logger) *RetryScheduler {
	if len(backoff) == 0 {
		backoff = []time.Duration{5 * time.Second, 30 * time.Second, 2 * time.Minute}
	}
	return &RetryScheduler{
		transport:   transport,
		backoff:     backoff,
		maxAttempts: maxAttempts,
		logger:      logger,
		timers:      make(map[string]*time.Timer),
	}
}

// Schedule arms a timer that re-enqueues msg for the given channel.
// attempt is the number of deliveries already tried; once it reaches
// maxAttempts the failure is final and only logged.
func (s *RetryScheduler) Schedule(env queue.Envelope) {
	if env.Attempt >= s.maxAttempts {
		s.logger.Warn("retries exhausted",
			zap.String("recipient_id", env.Message.RecipientID),
			zap.String("type", env.Message.Type),
			zap.String("channel", env.Channel),
			zap.Int("attempts", env.Attempt))
		return
	}

	idx := env.Attempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(s.backoff) {
		idx = len(s.backoff) - 1
	}
	delay := s.backoff[idx]

	timerID := uuid.New().String()
	s.mu.Lock()
	s.timers[timerID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timerID)
		s.mu.Unlock()
		s.fire(env)
	})
	s.mu.Unlock()

	s.logger.Info("retry scheduled",
		zap.String("channel", env.Channel),
		zap.Int("attempt", env.Attempt),
		zap.Duration("delay", delay))
}

func (s *RetryScheduler) fire(env queue.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	env.ID = uuid.New().String()
	env.EnqueuedAt = time.Now().UTC()
	if err := s.transport.Enqueue(ctx, env); err != nil {
		s.logger.Error("could not re-enqueue retry",
			zap.String("channel", env.Channel),
			zap.Int("attempt", env.Attempt),
			zap.Error(err))
	}
}

// Stop cancels all pending retry timers. Called during shutdown; a cancelled
// retry is simply dropped.
func (s *RetryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Pending reports the number of armed retry timers.
func (s *RetryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
