// Package repo provides the instance store implementations
package repo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	perr "retention/internal/platform/errors"
	"retention/internal/services/instances/domain"
)

// Memory is the in-process instance store
// the map mutex only guards slot lookup; writes lock one slot, so writers
// to different instances never serialize on a shared lock
type Memory struct {
	mu    sync.RWMutex
	slots map[string]*slot

	now   func() time.Time
	newID func() string
}

type slot struct {
	mu   sync.Mutex
	inst domain.Instance
}

// NewMemory constructs an empty memory store
func NewMemory() *Memory {
	return &Memory{
		slots: make(map[string]*slot),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create implements domain.StorePort
func (m *Memory) Create(_ context.Context, ev domain.EventSnapshot) (string, error) {
	id := m.newID()
	now := m.now()
	s := &slot{inst: domain.Instance{
		ID:            id,
		Event:         ev,
		CurrentStep:   domain.StepStarted,
		RuntimeStatus: domain.StatusRunning,
		Steps: []domain.StepRecord{{
			Seq:        1,
			Step:       domain.StepStarted,
			OK:         true,
			RecordedAt: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}}

	m.mu.Lock()
	m.slots[id] = s
	m.mu.Unlock()
	return id, nil
}

// RecordStep implements domain.StorePort
func (m *Memory) RecordStep(_ context.Context, id string, w domain.StepWrite) error {
	s, err := m.slot(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inst := &s.inst
	if inst.Terminal() {
		return perr.Conflictf("instance %s is terminal (%s)", id, inst.CurrentStep)
	}
	if !domain.AllowedAfter(inst.CurrentStep, w.Step) {
		return perr.Conflictf("step %s cannot follow %s on instance %s", w.Step, inst.CurrentStep, id)
	}

	now := m.now()
	inst.Steps = append(inst.Steps, domain.StepRecord{
		Seq:         len(inst.Steps) + 1,
		Step:        w.Step,
		OK:          w.OK,
		Payload:     append([]byte(nil), w.Payload...),
		ErrorDetail: w.ErrorDetail,
		LatencyMS:   w.LatencyMS,
		RecordedAt:  now,
	})
	inst.CurrentStep = w.Step
	inst.UpdatedAt = now

	switch w.Step {
	case domain.StepCompleted:
		inst.RuntimeStatus = domain.StatusCompleted
		inst.Result = append([]byte(nil), w.Result...)
	case domain.StepFailed:
		inst.RuntimeStatus = domain.StatusFailed
		inst.ErrorDetail = w.ErrorDetail
		inst.FailingStep = w.FailingStep
	}
	return nil
}

// Get implements domain.StorePort
func (m *Memory) Get(_ context.Context, id string) (domain.Instance, error) {
	s, err := m.slot(id)
	if err != nil {
		return domain.Instance{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// copy so callers never observe a torn or later-mutated record
	out := s.inst
	out.Steps = make([]domain.StepRecord, len(s.inst.Steps))
	copy(out.Steps, s.inst.Steps)
	out.Result = append([]byte(nil), s.inst.Result...)
	return out, nil
}

func (m *Memory) slot(id string) (*slot, error) {
	m.mu.RLock()
	s, ok := m.slots[id]
	m.mu.RUnlock()
	if !ok {
		return nil, perr.NotFoundf("instance %s not found", id)
	}
	return s, nil
}
