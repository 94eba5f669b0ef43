package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"household-med-tracker/internal/domain/members"
)

type MembersRepo struct {
	db *sql.DB
}

func NewMembersRepo(db *sql.DB) *MembersRepo {
	return &MembersRepo{db: db}
}

func (r *MembersRepo) Create(ctx context.Context, m members.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO members (
			id, owner_user_id,
			type, pet_species,
			name, birth_date, notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		m.ID,
		m.OwnerUserID,
		string(m.Type),
		string(m.PetSpecies),
		m.Name,
		toNullDate(m.BirthDate),
		m.Notes,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MembersRepo) Update(ctx context.Context, m members.Member) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE members
		SET
			name = $2,
			birth_date = $3,
			notes = $4,
			updated_at = $5
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		toNullDate(m.BirthDate),
		m.Notes,
		m.UpdatedAt,
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

func (r *MembersRepo) GetByID(ctx context.Context, id string) (members.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return members.Member{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, owner_user_id,
			type, pet_species,
			name, birth_date, notes,
			created_at, updated_at
		FROM members
		WHERE id = $1
	`, id)

	return scanMember(row.Scan)
}

func (r *MembersRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]members.Member, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_user_id,
			type, pet_species,
			name, birth_date, notes,
			created_at, updated_at
		FROM members
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]members.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *MembersRepo) ListAll(ctx context.Context) ([]members.Member, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, owner_user_id,
			type, pet_species,
			name, birth_date, notes,
			created_at, updated_at
		FROM members
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]members.Member, 0)
	for rows.Next() {
		m, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *MembersRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM members
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanMember(scan func(...any) error) (members.Member, error) {
	var m members.Member
	var typ, species string
	var bd sql.NullTime

	if err := scan(
		&m.ID,
		&m.OwnerUserID,
		&typ,
		&species,
		&m.Name,
		&bd,
		&m.Notes,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return members.Member{}, ErrNotFound
		}
		return members.Member{}, err
	}

	m.Type = members.MemberType(typ)
	m.PetSpecies = members.PetSpecies(species)
	if bd.Valid {
		t := bd.Time
		// ojo: birth_date es date, pgx lo puede mapear a time.Time midnight UTC
		m.BirthDate = &t
	}

	return m, nil
}

// birth_date es DATE, lo pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
