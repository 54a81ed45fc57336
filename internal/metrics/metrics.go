package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fidelize/notifyd/internal/dispatch"
	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/worker"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	DeliveriesTotal  *prometheus.CounterVec
	DeliveryFailures *prometheus.CounterVec
	DispatchLatency  prometheus.Histogram
	QueueDepthHigh   prometheus.Gauge
	QueueDepthNormal prometheus.Gauge
	QueueDepthLow    prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DeliveriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Total number of successful channel deliveries.",
		}, []string{"channel"}),

		DeliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_delivery_failures_total",
			Help: "Total number of failed channel deliveries, by error code.",
		}, []string{"channel", "error_code"}),

		DispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_dispatch_seconds",
			Help:    "End-to-end dispatch latency from dequeue to final channel result.",
			Buckets: prometheus.DefBuckets,
		}),

		QueueDepthHigh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_high",
			Help: "Current number of envelopes in the high tier.",
		}),
		QueueDepthNormal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_normal",
			Help: "Current number of envelopes in the normal tier.",
		}),
		QueueDepthLow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth_low",
			Help: "Current number of envelopes in the low tier.",
		}),
	}

	reg.MustRegister(
		m.DeliveriesTotal,
		m.DeliveryFailures,
		m.DispatchLatency,
		m.QueueDepthHigh,
		m.QueueDepthNormal,
		m.QueueDepthLow,
	)

	return m
}

// DispatchEvents returns the event callbacks expected by dispatch.Events.
// Centralises the prometheus observation calls so the dispatcher stays
// metrics-agnostic.
func (m *Metrics) DispatchEvents() dispatch.Events {
	return dispatch.Events{
		OnDispatched: func(_ domain.Message, result domain.DispatchResult) {
			for channelID, res := range result.ChannelResults {
				if res.Success {
					m.DeliveriesTotal.WithLabelValues(channelID).Inc()
				}
			}
		},
		OnDeliveryFailed: func(_ domain.Message, channelID string, res domain.DeliveryResult) {
			m.DeliveryFailures.WithLabelValues(channelID, res.ErrorCode).Inc()
		},
	}
}

// WorkerHooks returns the metric callbacks expected by worker.MetricHooks.
func (m *Metrics) WorkerHooks() worker.MetricHooks {
	return worker.MetricHooks{
		OnProcessed: func(latency time.Duration) {
			m.DispatchLatency.Observe(latency.Seconds())
		},
	}
}

// ObserveQueueDepths updates the three queue-depth gauges.
// Called periodically from a small goroutine in main.
func (m *Metrics) ObserveQueueDepths(high, normal, low int) {
	m.QueueDepthHigh.Set(float64(high))
	m.QueueDepthNormal.Set(float64(normal))
	m.QueueDepthLow.Set(float64(low))
}
