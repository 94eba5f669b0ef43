package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"household-med-tracker/internal/domain/doses"
)

type DosesRepo struct {
	db *sql.DB
}

func NewDosesRepo(db *sql.DB) *DosesRepo {
	return &DosesRepo{db: db}
}

func (r *DosesRepo) Create(ctx context.Context, d doses.DoseRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dose_records (
			id, member_id, medication_id, schedule_id,
			taken_at, recorded_at,
			note
		) VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		d.ID,
		d.MemberID,
		d.MedicationID,
		toNullString(d.ScheduleID),
		d.TakenAt,
		d.RecordedAt,
		d.Note,
	)
	return err
}

func (r *DosesRepo) GetByID(ctx context.Context, id string) (doses.DoseRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return doses.DoseRecord{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, member_id, medication_id, schedule_id,
			taken_at, recorded_at,
			note
		FROM dose_records
		WHERE id = $1
	`, id)

	return scanDose(row.Scan)
}

// ListByMember filtra por [From, To) sobre taken_at, más reciente primero.
// Limit <= 0 significa sin tope: el motor de adherencia necesita la ventana
// completa, solo el handler pagina.
func (r *DosesRepo) ListByMember(ctx context.Context, memberID string, filter doses.ListFilter) ([]doses.DoseRecord, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, member_id, medication_id, schedule_id,
			taken_at, recorded_at,
			note
		FROM dose_records
		WHERE member_id = $1
	`)

	args := []any{memberID}
	argN := 2

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND taken_at >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND taken_at < $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	sb.WriteString(" ORDER BY taken_at DESC")

	if filter.Limit > 0 {
		limit := filter.Limit
		if limit > 200 {
			limit = 200
		}
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]doses.DoseRecord, 0)
	for rows.Next() {
		d, err := scanDose(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, rows.Err()
}

func (r *DosesRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM dose_records
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

func scanDose(scan func(...any) error) (doses.DoseRecord, error) {
	var d doses.DoseRecord
	var scheduleID sql.NullString

	if err := scan(
		&d.ID,
		&d.MemberID,
		&d.MedicationID,
		&scheduleID,
		&d.TakenAt,
		&d.RecordedAt,
		&d.Note,
	); err != nil {
		if err == sql.ErrNoRows {
			return doses.DoseRecord{}, ErrNotFound
		}
		return doses.DoseRecord{}, err
	}

	if scheduleID.Valid {
		v := scheduleID.String
		d.ScheduleID = &v
	}

	return d, nil
}

func toNullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *v, Valid: true}
}
