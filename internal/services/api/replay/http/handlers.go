// Package http provides the replay submission endpoint
package http

import (
	"net/http"
	"time"

	"retention/internal/modkit/httpkit"
	replaydomain "retention/internal/services/replay/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Submit replaydomain.SubmitPort
}

type handlers struct {
	deps Deps
}

// Register mounts the replay routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.PostJSON[StartRequest](r, "/replay/start", h.start)
}

// StartRequest describes a historical window to replay
// swagger:model
type StartRequest struct {
	FromTS            time.Time `json:"from_ts" validate:"required" example:"2026-05-01T00:00:00Z"`
	ToTS              time.Time `json:"to_ts"   validate:"required" example:"2026-06-01T00:00:00Z"`
	CompressionFactor *float64  `json:"compression_factor,omitempty" example:"120"`
	BatchSize         *int      `json:"batch_size,omitempty" example:"1000"`
	MaxInflight       *int      `json:"max_inflight,omitempty" example:"16"`
}

// StartResponse acknowledges the accepted job
type StartResponse struct {
	Status string  `json:"status" example:"accepted"`
	Factor float64 `json:"compression_factor" example:"120"`
	Batch  int     `json:"batch_size" example:"1000"`
}

// swagger:route POST /replay/start Replay replayStart
// @Summary Submit a time-compressed historical replay
// @Description Accepts a single replay job. A second submission while one is
// @Description queued or running is rejected with a conflict. Callers poll
// @Description per-instance status, the submission never reports per-event outcomes.
// @Tags Replay
// @Accept json
// @Produce json
// @Param payload body StartRequest true "Window"
// @Success 202 {object} StartResponse "accepted"
// @Router /replay/start [post]
func (h *handlers) start(_ *http.Request, in StartRequest) (any, error) {
	job := replaydomain.Job{
		From:   in.FromTS,
		To:     in.ToTS,
		Factor: replaydomain.DefaultFactor,
		Batch:  replaydomain.DefaultBatch,
	}
	if in.CompressionFactor != nil {
		job.Factor = *in.CompressionFactor
	}
	if in.BatchSize != nil {
		job.Batch = *in.BatchSize
	}
	if in.MaxInflight != nil {
		job.MaxInflight = *in.MaxInflight
	}

	if err := h.deps.Submit.Submit(job); err != nil {
		return nil, err
	}
	return httpkit.Accepted(StartResponse{
		Status: "accepted",
		Factor: job.Factor,
		Batch:  job.Batch,
	}), nil
}
