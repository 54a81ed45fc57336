package handler

import (
	"net/http"

	"github.com/fidelize/notifyd/internal/queue"
)

// QueueHandler serves a human-readable JSON queue snapshot.
// Raw Prometheus metrics (counters, histograms) are available at /metrics
// via promhttp.Handler and are separate from this endpoint.
type QueueHandler struct {
	transport queue.Transport
}

func NewQueueHandler(transport queue.Transport) *QueueHandler {
	return &QueueHandler{transport: transport}
}

// Depths handles GET /api/v1/queue
func (h *QueueHandler) Depths(w http.ResponseWriter, r *http.Request) {
	high, normal, low := h.transport.Depths(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_depth": map[string]int{
			"high":   high,
			"normal": normal,
			"low":    low,
			"total":  high + normal + low,
		},
	})
}
