package caregrants

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Grant
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Grant{}}
}

func (r *testRepo) Create(ctx context.Context, g Grant) error {
	if g.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[g.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *testRepo) Update(ctx context.Context, g Grant) error {
	if g.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[g.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Grant, error) {
	g, ok := r.byID[id]
	if !ok {
		return Grant{}, errRepoNotFound
	}
	return g, nil
}

func (r *testRepo) ListByMember(ctx context.Context, memberID string) ([]Grant, error) {
	out := make([]Grant, 0)
	for _, g := range r.byID {
		if g.MemberID == memberID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *testRepo) GetActiveGrant(ctx context.Context, memberID, caregiverUserID string) (Grant, error) {
	var winner Grant
	has := false

	for _, g := range r.byID {
		if g.MemberID != memberID {
			continue
		}
		if g.CaregiverUserID != caregiverUserID {
			continue
		}
		if g.Status != StatusActive {
			continue
		}
		if !has || g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			has = true
		}
	}

	if !has {
		return Grant{}, errRepoNotFound
	}
	return winner, nil
}

func (r *testRepo) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]Grant, error) {
	out := make([]Grant, 0)
	for _, g := range r.byID {
		if g.CaregiverUserID == caregiverUserID {
			out = append(out, g)
		}
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo)
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return svc
}

func TestInvite_DefaultScopes(t *testing.T) {
	svc := newTestService(newTestRepo())

	g, err := svc.Invite(context.Background(), InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "carer-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if g.Status != StatusInvited {
		t.Fatalf("expected status invited, got %s", g.Status)
	}
	if !HasScope(g, ScopeMemberRead) || !HasScope(g, ScopeDosesRead) {
		t.Fatalf("expected default scopes, got %v", g.Scopes)
	}
}

func TestInvite_RejectsUnknownScope(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Invite(context.Background(), InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "carer-1",
		Scopes:          []Scope{ScopeDosesLog, "doses:unknown"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestInvite_RejectsSelfGrant(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Invite(context.Background(), InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "owner-1",
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestInvite_ReinviteUpdatesScopesInsteadOfDuplicating(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)

	first, err := svc.Invite(context.Background(), InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "carer-1",
		Scopes:          []Scope{ScopeMemberRead},
	})
	if err != nil {
		t.Fatalf("first invite: %v", err)
	}

	second, err := svc.Invite(context.Background(), InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "carer-1",
		Scopes:          []Scope{ScopeMemberRead, ScopeDosesLog},
	})
	if err != nil {
		t.Fatalf("second invite: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected reinvite to reuse grant %s, got %s", first.ID, second.ID)
	}
	if !HasScope(second, ScopeDosesLog) {
		t.Fatalf("expected updated scopes, got %v", second.Scopes)
	}
	if len(repo.byID) != 1 {
		t.Fatalf("expected single grant in repo, got %d", len(repo.byID))
	}
}

func TestAcceptRevoke_Lifecycle(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	g, err := svc.Invite(ctx, InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "carer-1",
	})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}

	// Solo el cuidador invitado puede aceptar.
	if _, err := svc.Accept(ctx, g.ID, "intruder"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	accepted, err := svc.Accept(ctx, g.ID, "carer-1")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusActive {
		t.Fatalf("expected active, got %s", accepted.Status)
	}

	// Accept es idempotente.
	again, err := svc.Accept(ctx, g.ID, "carer-1")
	if err != nil || again.Status != StatusActive {
		t.Fatalf("idempotent accept failed: %v %s", err, again.Status)
	}

	// Solo el owner puede revocar.
	if _, err := svc.Revoke(ctx, g.ID, "carer-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden on revoke, got %v", err)
	}

	revoked, err := svc.Revoke(ctx, g.ID, "owner-1")
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked.Status != StatusRevoked || revoked.RevokedAt == nil {
		t.Fatalf("expected revoked with timestamp, got %+v", revoked)
	}

	// Un grant revocado no se puede aceptar.
	if _, err := svc.Accept(ctx, g.ID, "carer-1"); !errors.Is(err, ErrBadState) {
		t.Fatalf("expected ErrBadState, got %v", err)
	}

	// Revoke es idempotente.
	if _, err := svc.Revoke(ctx, g.ID, "owner-1"); err != nil {
		t.Fatalf("idempotent revoke failed: %v", err)
	}
}

func TestGetActiveGrant_IgnoresInvitedAndRevoked(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	g, _ := svc.Invite(ctx, InviteInput{
		MemberID:        "member-1",
		OwnerUserID:     "owner-1",
		CaregiverUserID: "carer-1",
	})

	if _, err := svc.GetActiveGrant(ctx, "member-1", "carer-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound before accept, got %v", err)
	}

	if _, err := svc.Accept(ctx, g.ID, "carer-1"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.GetActiveGrant(ctx, "member-1", "carer-1"); err != nil {
		t.Fatalf("expected active grant, got %v", err)
	}

	if _, err := svc.Revoke(ctx, g.ID, "owner-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.GetActiveGrant(ctx, "member-1", "carer-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after revoke, got %v", err)
	}
}
