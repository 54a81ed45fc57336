package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/queue"
)

// Dispatcher is the slice of the dispatch orchestrator the worker needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message) domain.DispatchResult
	DispatchToChannel(ctx context.Context, msg domain.Message, channelID string) domain.DeliveryResult
}

// Retryer schedules a follow-up delivery for a single failed channel.
type Retryer interface {
	Schedule(env queue.Envelope)
}

// Worker is a single goroutine that continuously pulls envelopes from the
// transport, dispatches them, and hands retryable failures to the scheduler.
type Worker struct {
	id         int
	transport  queue.Transport
	dispatcher Dispatcher
	retryer    Retryer
	logger     *zap.Logger

	// Hook for metrics — injected by the pool so the worker stays metrics-agnostic.
	onProcessed func(latency time.Duration)
}

// NewWorker constructs a worker. retryer and onProcessed are optional (nil = no-op).
func NewWorker(
	id int,
	transport queue.Transport,
	dispatcher Dispatcher,
	retryer Retryer,
	logger *zap.Logger,
	onProcessed func(time.Duration),
) *Worker {
	if onProcessed == nil {
		onProcessed = func(time.Duration) {}
	}
	return &Worker{
		id:          id,
		transport:   transport,
		dispatcher:  dispatcher,
		retryer:     retryer,
		logger:      logger,
		onProcessed: onProcessed,
	}
}

// Run blocks until ctx is cancelled, processing one envelope per iteration.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started", zap.Int("id", w.id))
	for {
		env, ok := w.transport.Dequeue(ctx)
		if !ok {
			w.logger.Info("worker stopping", zap.Int("id", w.id))
			return
		}
		w.process(ctx, env)
	}
}

func (w *Worker) process(ctx context.Context, env queue.Envelope) {
	start := time.Now()
	log := w.logger.With(
		zap.String("envelope_id", env.ID),
		zap.String("recipient_id", env.Message.RecipientID),
		zap.String("type", env.Message.Type),
	)

	if env.Channel != "" {
		w.processRetry(ctx, env, log)
		w.onProcessed(time.Since(start))
		return
	}

	result := w.dispatcher.Dispatch(ctx, env.Message)
	for channelID, res := range result.ChannelResults {
		if res.Success || !res.IsRetryable() {
			continue
		}
		w.scheduleRetry(env, channelID)
	}
	w.onProcessed(time.Since(start))

	log.Info("envelope processed",
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailureCount),
		zap.Duration("latency", time.Since(start)))
}

// processRetry handles a targeted envelope: a single channel that failed on
// a previous attempt. Preference checks already ran the first time around.
func (w *Worker) processRetry(ctx context.Context, env queue.Envelope, log *zap.Logger) {
	res := w.dispatcher.DispatchToChannel(ctx, env.Message, env.Channel)
	if res.Success {
		log.Info("retry delivered",
			zap.String("channel", env.Channel),
			zap.Int("attempt", env.Attempt))
		return
	}

	log.Warn("retry failed",
		zap.String("channel", env.Channel),
		zap.Int("attempt", env.Attempt),
		zap.String("error_code", res.ErrorCode))

	if res.IsRetryable() {
		w.scheduleRetry(env, env.Channel)
	}
}

func (w *Worker) scheduleRetry(env queue.Envelope, channelID string) {
	if w.retryer == nil {
		return
	}
	retry := env
	retry.Channel = channelID
	retry.Attempt = env.Attempt + 1
	w.retryer.Schedule(retry)
}
