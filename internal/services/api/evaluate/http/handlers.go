// Package http provides the live evaluation entry point
package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"retention/internal/modkit/httpkit"
	"retention/internal/platform/logger"
	evdomain "retention/internal/services/events/domain"
	instdomain "retention/internal/services/instances/domain"
	orchdomain "retention/internal/services/orchestrator/domain"
)

// Deps are the handler dependencies
type Deps struct {
	Engine  orchdomain.EnginePort
	Archive evdomain.ArchivePort
}

type handlers struct {
	deps Deps
	log  logger.Logger
}

// Register mounts the evaluation routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, log: *logger.Named("evaluate")}

	httpkit.PostJSON[EvaluateRequest](r, "/evaluate", h.evaluate)
}

// EvaluateRequest is one live note to run through the pipeline
// swagger:model
type EvaluateRequest struct {
	CustomerID string     `json:"customer_id" validate:"required" example:"C1042"`
	NoteID     string     `json:"note_id,omitempty" example:"note-550e"`
	TS         *time.Time `json:"ts,omitempty"`
	Text       string     `json:"text" validate:"required" example:"customer is fed up with the high fees"`
}

// EvaluateResponse points the caller at the started instance
type EvaluateResponse struct {
	InstanceID string `json:"instance_id" example:"6b1f0d2e-8f1a-4b47-9a3c-0f2f6f1c1a11"`
	StatusURL  string `json:"status_url"  example:"/api/v1/instances/6b1f0d2e-8f1a-4b47-9a3c-0f2f6f1c1a11"`
}

// swagger:route POST /evaluate Evaluate evaluateNote
// @Summary Evaluate one live event
// @Description Starts exactly one orchestration instance for the note and
// @Description returns a pollable status reference. The note is also appended
// @Description to the historical archive on a best effort basis.
// @Tags Evaluate
// @Accept json
// @Produce json
// @Param payload body EvaluateRequest true "Event"
// @Success 200 {object} EvaluateResponse "started"
// @Router /evaluate [post]
func (h *handlers) evaluate(r *http.Request, in EvaluateRequest) (any, error) {
	ts := time.Now().UTC()
	if in.TS != nil {
		ts = in.TS.UTC()
	}
	noteID := in.NoteID
	if noteID == "" {
		noteID = uuid.NewString()
	}

	// archive append is best effort, a dead archive must not block live work
	err := h.deps.Archive.Append(r.Context(), []evdomain.Event{{
		CustomerID: in.CustomerID,
		NoteID:     noteID,
		CreatedTS:  ts,
		Text:       in.Text,
	}})
	if err != nil {
		h.log.Warn().Str("customer_id", in.CustomerID).Err(err).Msg("archive append failed")
	}

	id, err := h.deps.Engine.StartAsync(r.Context(), instdomain.EventSnapshot{
		CustomerID: in.CustomerID,
		NoteID:     noteID,
		EventTS:    ts,
		Text:       in.Text,
	})
	if err != nil {
		return nil, err
	}

	return EvaluateResponse{
		InstanceID: id,
		StatusURL:  "/api/v1/instances/" + id,
	}, nil
}
