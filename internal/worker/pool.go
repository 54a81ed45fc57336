package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/queue"
)

// MetricHooks carries the metric callback functions injected by main.
// Using a struct keeps the pool constructor signature clean.
type MetricHooks struct {
	OnProcessed func(latency time.Duration)
}

// Pool manages the lifecycle of all workers.
// All workers share the same transport — the transport's tier ordering
// handles priority internally.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool creates size identical workers sharing one transport and dispatcher.
func NewPool(
	size int,
	transport queue.Transport,
	dispatcher Dispatcher,
	retryer Retryer,
	logger *zap.Logger,
	hooks MetricHooks,
) *Pool {
	workers := make([]*Worker, size)
	for i := range workers {
		workers[i] = NewWorker(
			i, transport, dispatcher, retryer,
			logger.With(zap.Int("worker_id", i)),
			hooks.OnProcessed,
		)
	}
	return &Pool{workers: workers}
}

// Start launches all workers as goroutines.
// The provided ctx is forwarded to every worker; cancelling it
// triggers a graceful shutdown of the entire pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
// Call this after cancelling the context to ensure in-flight envelopes finish.
func (p *Pool) Wait() {
	p.wg.Wait()
}
