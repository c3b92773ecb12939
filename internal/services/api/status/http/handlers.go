// Package http provides the read-only instance status projection
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"retention/internal/modkit/httpkit"
	perr "retention/internal/platform/errors"
	instdomain "retention/internal/services/instances/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Store instdomain.StorePort
}

type handlers struct {
	deps Deps
}

// Register mounts the status routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	httpkit.Get(r, "/instances/{id}", h.status)
}

// StepView is one recorded transition in the progress listing
type StepView struct {
	Seq        int       `json:"seq" example:"2"`
	Step       string    `json:"step" example:"TEXT_MATCHED"`
	OK         bool      `json:"ok" example:"true"`
	LatencyMS  int64     `json:"latency_ms" example:"12"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Progress describes how far an instance got
type Progress struct {
	CurrentStep string     `json:"current_step" example:"EVALUATED"`
	Steps       []StepView `json:"steps"`
}

// StatusResponse is the external projection of one instance
// swagger:model
type StatusResponse struct {
	InstanceID    string          `json:"instance_id"`
	RuntimeStatus string          `json:"runtime_status" example:"Running"`
	Progress      Progress        `json:"progress"`
	FailingStep   string          `json:"failing_step,omitempty" example:"FEATURES_FETCHED"`
	ErrorDetail   string          `json:"error_detail,omitempty"`
	Result        json.RawMessage `json:"result,omitempty"`
}

// swagger:route GET /instances/{id} Status instanceStatus
// @Summary Instance status by id
// @Tags Status
// @Produce json
// @Param id path string true "Instance id"
// @Success 200 {object} StatusResponse "ok"
// @Failure 404 {object} httpkit.Envelope "unknown instance"
// @Router /instances/{id} [get]
func (h *handlers) status(r *http.Request) (any, error) {
	id := chi.URLParam(r, "id")
	if id == "" {
		return nil, perr.Validationf("instance id is required")
	}

	inst, err := h.deps.Store.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}

	steps := make([]StepView, len(inst.Steps))
	for i, s := range inst.Steps {
		steps[i] = StepView{
			Seq:        s.Seq,
			Step:       string(s.Step),
			OK:         s.OK,
			LatencyMS:  s.LatencyMS,
			RecordedAt: s.RecordedAt,
		}
	}

	return StatusResponse{
		InstanceID:    inst.ID,
		RuntimeStatus: string(inst.RuntimeStatus),
		Progress: Progress{
			CurrentStep: string(inst.CurrentStep),
			Steps:       steps,
		},
		FailingStep: string(inst.FailingStep),
		ErrorDetail: inst.ErrorDetail,
		Result:      inst.Result,
	}, nil
}
