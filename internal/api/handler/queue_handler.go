package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ricirt/report-robot/internal/domain"
	"github.com/ricirt/report-robot/internal/queue"
)

// StatusSource is satisfied by *queue.Runner.
type StatusSource interface {
	Status(ctx context.Context) (queue.Status, error)
}

// QueueHandler serves a human-readable JSON snapshot of the persisted queue.
// Raw Prometheus metrics are available at /metrics and are separate from
// this endpoint.
type QueueHandler struct {
	source StatusSource
	logger *zap.Logger
}

func NewQueueHandler(source StatusSource, logger *zap.Logger) *QueueHandler {
	return &QueueHandler{source: source, logger: logger}
}

type queueSnapshot struct {
	TriggerActive bool                     `json:"trigger_active"`
	Cursor        int                      `json:"cursor"`
	Total         int                      `json:"total"`
	Exhausted     bool                     `json:"exhausted"`
	Counts        map[domain.JobStatus]int `json:"counts"`
	Jobs          []domain.Job             `json:"jobs"`
}

// GetQueue handles GET /api/v1/queue
func (h *QueueHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	st, err := h.source.Status(r.Context())
	if err != nil {
		h.logger.Error("queue status failed", zap.Error(err))
		mapError(w, err)
		return
	}

	jobs := st.State.Jobs
	if jobs == nil {
		jobs = []domain.Job{}
	}
	respondJSON(w, http.StatusOK, queueSnapshot{
		TriggerActive: st.TriggerActive,
		Cursor:        st.State.Cursor,
		Total:         len(jobs),
		Exhausted:     st.State.Exhausted(),
		Counts:        st.State.Counts(),
		Jobs:          jobs,
	})
}
