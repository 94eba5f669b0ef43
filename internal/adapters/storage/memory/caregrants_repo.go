package memory

import (
	"context"
	"errors"
	"sync"

	"household-med-tracker/internal/domain/caregrants"
)

type grantRepo struct {
	mu   sync.RWMutex
	byID map[string]caregrants.Grant
}

func NewCaregrantsRepo() caregrants.Repository {
	return &grantRepo{
		byID: make(map[string]caregrants.Grant),
	}
}

func (r *grantRepo) Create(ctx context.Context, g caregrants.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) Update(ctx context.Context, g caregrants.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; !exists {
		return ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *grantRepo) GetByID(ctx context.Context, id string) (caregrants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return caregrants.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *grantRepo) ListByMember(ctx context.Context, memberID string) ([]caregrants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]caregrants.Grant, 0)
	for _, g := range r.byID {
		if g.MemberID == memberID {
			out = append(out, g)
		}
	}
	return out, nil
}

// Defensivo: si por data sucia existieran múltiples grants activos,
// devolvemos el más reciente por UpdatedAt (y en empate, por CreatedAt).
func (r *grantRepo) GetActiveGrant(ctx context.Context, memberID, caregiverUserID string) (caregrants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner caregrants.Grant
	has := false

	for _, g := range r.byID {
		if g.MemberID != memberID {
			continue
		}
		if g.CaregiverUserID != caregiverUserID {
			continue
		}
		if g.Status != caregrants.StatusActive {
			continue
		}

		if !has {
			winner = g
			has = true
			continue
		}

		if g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			continue
		}
		if g.UpdatedAt.Equal(winner.UpdatedAt) {
			if g.CreatedAt.After(winner.CreatedAt) {
				winner = g
			}
		}
	}

	if !has {
		return caregrants.Grant{}, ErrNotFound
	}
	return winner, nil
}

func (r *grantRepo) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]caregrants.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]caregrants.Grant, 0)
	for _, g := range r.byID {
		if g.CaregiverUserID == caregiverUserID {
			out = append(out, g)
		}
	}
	return out, nil
}
