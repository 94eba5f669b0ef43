package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"household-med-tracker/internal/domain/doses"
)

type doseRepo struct {
	mu   sync.RWMutex
	byID map[string]doses.DoseRecord
}

func NewDoseRepo() doses.Repository {
	return &doseRepo{
		byID: make(map[string]doses.DoseRecord),
	}
}

func (r *doseRepo) Create(ctx context.Context, d doses.DoseRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dose id required")
	}
	if _, exists := r.byID[d.ID]; exists {
		return errors.New("dose already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *doseRepo) GetByID(ctx context.Context, id string) (doses.DoseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[id]
	if !ok {
		return doses.DoseRecord{}, ErrNotFound
	}
	return d, nil
}

// ListByMember filtra por [From, To) sobre taken_at y devuelve más reciente
// primero. Limit <= 0 significa sin tope: el motor de adherencia necesita la
// ventana completa, solo el handler pagina.
func (r *doseRepo) ListByMember(ctx context.Context, memberID string, filter doses.ListFilter) ([]doses.DoseRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]doses.DoseRecord, 0)
	for _, d := range r.byID {
		if d.MemberID != memberID {
			continue
		}
		if filter.From != nil && d.TakenAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !d.TakenAt.Before(*filter.To) {
			continue
		}
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].TakenAt.After(out[j].TakenAt)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (r *doseRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
