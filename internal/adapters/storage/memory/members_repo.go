package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"household-med-tracker/internal/domain/members"
)

var (
	ErrNotFound = errors.New("not found")
)

type memberRepo struct {
	mu   sync.RWMutex
	byID map[string]members.Member
}

func NewMemberRepo() members.Repository {
	return &memberRepo{
		byID: make(map[string]members.Member),
	}
}

func (r *memberRepo) Create(ctx context.Context, m members.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("member id required")
	}
	if _, exists := r.byID[m.ID]; exists {
		return errors.New("member already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memberRepo) Update(ctx context.Context, m members.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(m.ID) == "" {
		return errors.New("member id required")
	}
	if _, exists := r.byID[m.ID]; !exists {
		return ErrNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.byID[id]
	if !ok {
		return members.Member{}, ErrNotFound
	}
	return m, nil
}

func (r *memberRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]members.Member, 0)
	for _, m := range r.byID {
		if m.OwnerUserID == ownerUserID {
			out = append(out, m)
		}
	}

	// Orden estable por created_at asc (solo para consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *memberRepo) ListAll(ctx context.Context) ([]members.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]members.Member, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *memberRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}
