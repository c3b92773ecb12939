package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"retention/internal/modkit/repokit"
	perr "retention/internal/platform/errors"
	"retention/internal/platform/store"
	"retention/internal/services/instances/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage is the repository surface the service binds against
// the expected-predecessor check lives here so every writer goes through it
type Storage = domain.StorePort

var (
	_ Storage = (*pg)(nil)
	_ Storage = (*Memory)(nil)
)

// Create implements Storage
func (s *pg) Create(ctx context.Context, ev domain.EventSnapshot) (string, error) {
	id := uuid.NewString()

	_, err := s.q.Exec(ctx, `
		INSERT INTO instances
			(instance_id, customer_id, note_id, event_ts, note_text, current_step, runtime_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, ev.CustomerID, ev.NoteID, ev.EventTS, ev.Text,
		string(domain.StepStarted), string(domain.StatusRunning),
	)
	if err != nil {
		return "", perr.FromPostgres(err, "create instance")
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO instance_steps (instance_id, seq, step, ok, recorded_at)
		VALUES ($1, 1, $2, TRUE, now())`,
		id, string(domain.StepStarted),
	)
	if err != nil {
		return "", perr.FromPostgres(err, "record STARTED")
	}
	return id, nil
}

// RecordStep implements Storage
// the row lock on instances serializes writers per instance only
func (s *pg) RecordStep(ctx context.Context, id string, w domain.StepWrite) error {
	var current string
	err := s.q.QueryRow(ctx, `
		SELECT current_step FROM instances WHERE instance_id = $1 FOR UPDATE`, id,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return perr.NotFoundf("instance %s not found", id)
		}
		return perr.FromPostgres(err, "lock instance")
	}

	prev := domain.Step(current)
	if domain.Terminal(prev) {
		return perr.Conflictf("instance %s is terminal (%s)", id, prev)
	}
	if !domain.AllowedAfter(prev, w.Step) {
		return perr.Conflictf("step %s cannot follow %s on instance %s", w.Step, prev, id)
	}

	_, err = s.q.Exec(ctx, `
		INSERT INTO instance_steps
			(instance_id, seq, step, ok, payload_json, error_detail, latency_ms, recorded_at)
		SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4, NULLIF($5, ''), $6, now()
		FROM instance_steps WHERE instance_id = $1`,
		id, string(w.Step), w.OK, nullableJSON(w.Payload), w.ErrorDetail, w.LatencyMS,
	)
	if err != nil {
		return perr.FromPostgres(err, "append step")
	}

	switch w.Step {
	case domain.StepCompleted:
		err = store.ExecOne(ctx, s.q, `
			UPDATE instances
			SET current_step = $2, runtime_status = $3, result_json = $4, updated_at = now()
			WHERE instance_id = $1`,
			id, string(w.Step), string(domain.StatusCompleted), nullableJSON(w.Result),
		)
	case domain.StepFailed:
		err = store.ExecOne(ctx, s.q, `
			UPDATE instances
			SET current_step = $2, runtime_status = $3, failing_step = $4,
				error_detail = $5, updated_at = now()
			WHERE instance_id = $1`,
			id, string(w.Step), string(domain.StatusFailed), string(w.FailingStep), w.ErrorDetail,
		)
	default:
		err = store.ExecOne(ctx, s.q, `
			UPDATE instances SET current_step = $2, updated_at = now()
			WHERE instance_id = $1`,
			id, string(w.Step),
		)
	}
	if err != nil {
		return perr.FromPostgres(err, "advance instance")
	}
	return nil
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, id string) (domain.Instance, error) {
	var (
		inst        domain.Instance
		failing     *string
		errDetail   *string
		result      []byte
		currentStep string
		status      string
		eventTS     time.Time
	)
	err := s.q.QueryRow(ctx, `
		SELECT instance_id, customer_id, note_id, event_ts, note_text,
			current_step, runtime_status, failing_step, error_detail, result_json,
			created_at, updated_at
		FROM instances WHERE instance_id = $1`, id,
	).Scan(
		&inst.ID, &inst.Event.CustomerID, &inst.Event.NoteID, &eventTS, &inst.Event.Text,
		&currentStep, &status, &failing, &errDetail, &result,
		&inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return domain.Instance{}, perr.NotFoundf("instance %s not found", id)
		}
		return domain.Instance{}, perr.FromPostgres(err, "get instance")
	}
	inst.Event.EventTS = eventTS
	inst.CurrentStep = domain.Step(currentStep)
	inst.RuntimeStatus = domain.RuntimeStatus(status)
	if failing != nil {
		inst.FailingStep = domain.Step(*failing)
	}
	if errDetail != nil {
		inst.ErrorDetail = *errDetail
	}
	inst.Result = result

	steps, err := store.Many(ctx, s.q, scanStep, `
		SELECT seq, step, ok, payload_json, error_detail, latency_ms, recorded_at
		FROM instance_steps WHERE instance_id = $1 ORDER BY seq`, id)
	if err != nil {
		return domain.Instance{}, perr.FromPostgres(err, "get steps")
	}
	inst.Steps = steps
	return inst, nil
}

func scanStep(r store.Row) (domain.StepRecord, error) {
	var (
		rec     domain.StepRecord
		step    string
		payload []byte
		detail  *string
	)
	if err := r.Scan(&rec.Seq, &step, &rec.OK, &payload, &detail, &rec.LatencyMS, &rec.RecordedAt); err != nil {
		return domain.StepRecord{}, err
	}
	rec.Step = domain.Step(step)
	rec.Payload = payload
	if detail != nil {
		rec.ErrorDetail = *detail
	}
	return rec, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
