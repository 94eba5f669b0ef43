package caregrants

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type InviteInput struct {
	MemberID        string
	OwnerUserID     string
	CaregiverUserID string
	Scopes          []Scope
}

func (s *Service) Invite(ctx context.Context, in InviteInput) (Grant, error) {
	memberID := strings.TrimSpace(in.MemberID)
	ownerID := strings.TrimSpace(in.OwnerUserID)
	caregiverID := strings.TrimSpace(in.CaregiverUserID)

	if memberID == "" || ownerID == "" || caregiverID == "" {
		return Grant{}, ErrInvalidInput
	}
	if ownerID == caregiverID {
		return Grant{}, ErrInvalidInput
	}

	// Scopes: si viene vacío, aplicamos default útil (ver miembro + ver tomas).
	// Si viene con valores, los validamos estrictamente.
	var scopes []Scope
	var err error
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopeMemberRead, ScopeDosesRead}
	} else {
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Grant{}, err
		}
		if len(scopes) == 0 {
			return Grant{}, ErrInvalidInput
		}
	}

	now := s.now()

	// 1) Buscar grants existentes para (memberID, caregiverID, ownerID)
	existing, allMatches, err := s.findLatestMatch(ctx, memberID, ownerID, caregiverID)
	if err == nil && existing.ID != "" {
		// Si el "winner" está revoked, permitimos re-invitar creando uno nuevo.
		if existing.Status != StatusRevoked {
			// 2) Deduplicar: revocar cualquier otro matching grant no-revoked
			_ = s.revokeOtherMatches(ctx, existing.ID, allMatches, now)

			// 3) Actualizar scopes del winner (permite "cambiar" scopes sin endpoint adicional)
			existing.Scopes = scopes
			existing.UpdatedAt = now

			if err := s.repo.Update(ctx, existing); err != nil {
				return Grant{}, err
			}
			return existing, nil
		}
	}

	g := Grant{
		ID:              uuid.NewString(),
		MemberID:        memberID,
		OwnerUserID:     ownerID,
		CaregiverUserID: caregiverID,
		Scopes:          scopes,
		Status:          StatusInvited,
		CreatedAt:       now,
		UpdatedAt:       now,
		RevokedAt:       nil,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) Accept(ctx context.Context, grantID, caregiverUserID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	caregiverUserID = strings.TrimSpace(caregiverUserID)

	if grantID == "" || caregiverUserID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.CaregiverUserID != caregiverUserID {
		return Grant{}, ErrForbidden
	}
	if g.Status == StatusRevoked {
		return Grant{}, ErrBadState
	}

	// Idempotente
	if g.Status == StatusActive {
		return g, nil
	}
	if g.Status != StatusInvited {
		return Grant{}, ErrBadState
	}

	now := s.now()
	g.Status = StatusActive
	g.UpdatedAt = now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) Revoke(ctx context.Context, grantID, ownerUserID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	ownerUserID = strings.TrimSpace(ownerUserID)

	if grantID == "" || ownerUserID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.OwnerUserID != ownerUserID {
		return Grant{}, ErrForbidden
	}

	// Idempotente
	if g.Status == StatusRevoked {
		return g, nil
	}

	now := s.now()
	g.Status = StatusRevoked
	g.UpdatedAt = now
	g.RevokedAt = &now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Grant, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByMember(ctx, memberID)
}

func (s *Service) GetActiveGrant(ctx context.Context, memberID, caregiverUserID string) (Grant, error) {
	memberID = strings.TrimSpace(memberID)
	caregiverUserID = strings.TrimSpace(caregiverUserID)

	if memberID == "" || caregiverUserID == "" {
		return Grant{}, ErrInvalidInput
	}
	g, err := s.repo.GetActiveGrant(ctx, memberID, caregiverUserID)
	if err != nil {
		return Grant{}, ErrNotFound
	}
	return g, nil
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]Grant, error) {
	caregiverUserID = strings.TrimSpace(caregiverUserID)
	if caregiverUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByCaregiver(ctx, caregiverUserID)
}

// HasScope valida si el grant incluye un scope.
func HasScope(g Grant, scope Scope) bool {
	for _, s := range g.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

func (s *Service) findLatestMatch(ctx context.Context, memberID, ownerID, caregiverID string) (Grant, []Grant, error) {
	items, err := s.repo.ListByMember(ctx, memberID)
	if err != nil {
		return Grant{}, nil, err
	}

	matches := make([]Grant, 0)
	var winner Grant
	hasWinner := false

	for _, g := range items {
		if g.MemberID != memberID || g.OwnerUserID != ownerID || g.CaregiverUserID != caregiverID {
			continue
		}
		matches = append(matches, g)

		if !hasWinner || g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			hasWinner = true
		}
	}

	if !hasWinner {
		return Grant{}, matches, ErrNotFound
	}
	return winner, matches, nil
}

func (s *Service) revokeOtherMatches(ctx context.Context, winnerID string, matches []Grant, now time.Time) error {
	for _, g := range matches {
		if g.ID == "" || g.ID == winnerID {
			continue
		}
		if g.Status == StatusRevoked {
			continue
		}
		g.Status = StatusRevoked
		g.UpdatedAt = now
		g.RevokedAt = &now
		_ = s.repo.Update(ctx, g) // best-effort
	}
	return nil
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	allowed := map[Scope]struct{}{
		ScopeMemberRead:        {},
		ScopeMemberEditProfile: {},
		ScopeMedsManage:        {},
		ScopeDosesRead:         {},
		ScopeDosesLog:          {},
		ScopeDosesDelete:       {},
	}

	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if _, ok := allowed[s]; !ok {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
