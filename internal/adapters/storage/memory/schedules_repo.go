package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"household-med-tracker/internal/domain/schedules"
)

type scheduleRepo struct {
	mu   sync.RWMutex
	byID map[string]schedules.Schedule
}

func NewScheduleRepo() schedules.Repository {
	return &scheduleRepo{
		byID: make(map[string]schedules.Schedule),
	}
}

func (r *scheduleRepo) Create(ctx context.Context, s schedules.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("schedule id required")
	}
	if _, exists := r.byID[s.ID]; exists {
		return errors.New("schedule already exists")
	}
	r.byID[s.ID] = s
	return nil
}

func (r *scheduleRepo) Update(ctx context.Context, s schedules.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		return errors.New("schedule id required")
	}
	if _, exists := r.byID[s.ID]; !exists {
		return ErrNotFound
	}
	r.byID[s.ID] = s
	return nil
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return schedules.Schedule{}, ErrNotFound
	}
	return s, nil
}

func (r *scheduleRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedules.Schedule, 0)
	for _, s := range r.byID {
		if s.MedicationID == medicationID {
			out = append(out, s)
		}
	}

	// HH:mm ordena lexicográfico == cronológico.
	sort.Slice(out, func(i, j int) bool {
		return out[i].TimeOfDay < out[j].TimeOfDay
	})

	return out, nil
}

func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
