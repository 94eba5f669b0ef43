package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"household-med-tracker/internal/domain/caregrants"
)

type CaregrantsRepo struct {
	db *sql.DB
}

func NewCaregrantsRepo(db *sql.DB) *CaregrantsRepo {
	return &CaregrantsRepo{db: db}
}

func (r *CaregrantsRepo) Create(ctx context.Context, g caregrants.Grant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO care_grants (
			id, member_id, owner_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		g.ID,
		g.MemberID,
		g.OwnerUserID,
		g.CaregiverUserID,
		scopesToTextArray(g.Scopes),
		string(g.Status),
		g.CreatedAt,
		g.UpdatedAt,
		toNullTime(g.RevokedAt),
	)
	return err
}

func (r *CaregrantsRepo) Update(ctx context.Context, g caregrants.Grant) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE care_grants
		SET
			scopes = $2,
			status = $3,
			updated_at = $4,
			revoked_at = $5
		WHERE id = $1
	`,
		g.ID,
		scopesToTextArray(g.Scopes),
		string(g.Status),
		g.UpdatedAt,
		toNullTime(g.RevokedAt),
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CaregrantsRepo) GetByID(ctx context.Context, id string) (caregrants.Grant, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return caregrants.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, member_id, owner_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM care_grants
		WHERE id = $1
	`, id)

	return scanGrant(row.Scan)
}

func (r *CaregrantsRepo) ListByMember(ctx context.Context, memberID string) ([]caregrants.Grant, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, member_id, owner_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM care_grants
		WHERE member_id = $1
		ORDER BY created_at ASC
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]caregrants.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func (r *CaregrantsRepo) GetActiveGrant(ctx context.Context, memberID, caregiverUserID string) (caregrants.Grant, error) {
	memberID = strings.TrimSpace(memberID)
	caregiverUserID = strings.TrimSpace(caregiverUserID)
	if memberID == "" || caregiverUserID == "" {
		return caregrants.Grant{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, member_id, owner_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM care_grants
		WHERE member_id = $1
		  AND caregiver_user_id = $2
		  AND status = 'active'
		ORDER BY updated_at DESC
		LIMIT 1
	`, memberID, caregiverUserID)

	return scanGrant(row.Scan)
}

func (r *CaregrantsRepo) ListByCaregiver(ctx context.Context, caregiverUserID string) ([]caregrants.Grant, error) {
	caregiverUserID = strings.TrimSpace(caregiverUserID)
	if caregiverUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, member_id, owner_user_id, caregiver_user_id,
			scopes, status,
			created_at, updated_at, revoked_at
		FROM care_grants
		WHERE caregiver_user_id = $1
		ORDER BY updated_at DESC
	`, caregiverUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]caregrants.Grant, 0)
	for rows.Next() {
		g, err := scanGrant(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}

	return out, rows.Err()
}

func scanGrant(scan func(...any) error) (caregrants.Grant, error) {
	var g caregrants.Grant
	var status string
	var scopes []string
	var revokedAt sql.NullTime

	if err := scan(
		&g.ID,
		&g.MemberID,
		&g.OwnerUserID,
		&g.CaregiverUserID,
		&scopes,
		&status,
		&g.CreatedAt,
		&g.UpdatedAt,
		&revokedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return caregrants.Grant{}, ErrNotFound
		}
		return caregrants.Grant{}, err
	}

	g.Status = caregrants.Status(status)
	g.Scopes = textArrayToScopes(scopes)
	if revokedAt.Valid {
		t := revokedAt.Time
		g.RevokedAt = &t
	}

	return g, nil
}

// helpers
func scopesToTextArray(in []caregrants.Scope) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

func textArrayToScopes(in []string) []caregrants.Scope {
	if len(in) == 0 {
		return []caregrants.Scope{}
	}
	out := make([]caregrants.Scope, 0, len(in))
	for _, s := range in {
		out = append(out, caregrants.Scope(s))
	}
	return out
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
