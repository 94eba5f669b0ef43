package postgres

import (
	"context"
	"database/sql"
	"strings"

	"household-med-tracker/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, member_id,
			name, category,
			dosage, frequency,
			stock_days, stock_alert_date,
			active,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		m.ID,
		m.MemberID,
		m.Name,
		string(m.Category),
		m.Dosage,
		m.Frequency,
		toNullInt(m.StockDays),
		toNullDate(m.StockAlertDate),
		m.Active,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET
			name = $2,
			category = $3,
			dosage = $4,
			frequency = $5,
			stock_days = $6,
			stock_alert_date = $7,
			active = $8,
			updated_at = $9
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		string(m.Category),
		m.Dosage,
		m.Frequency,
		toNullInt(m.StockDays),
		toNullDate(m.StockAlertDate),
		m.Active,
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

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, member_id,
			name, category,
			dosage, frequency,
			stock_days, stock_alert_date,
			active,
			created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	return scanMedication(row.Scan)
}

func (r *MedicationsRepo) ListByMember(ctx context.Context, memberID string) ([]medications.Medication, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, member_id,
			name, category,
			dosage, frequency,
			stock_days, stock_alert_date,
			active,
			created_at, updated_at
		FROM medications
		WHERE member_id = $1
		ORDER BY created_at ASC
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	return out, rows.Err()
}

func scanMedication(scan func(...any) error) (medications.Medication, error) {
	var m medications.Medication
	var category string
	var stockDays sql.NullInt64
	var alertDate sql.NullTime

	if err := scan(
		&m.ID,
		&m.MemberID,
		&m.Name,
		&category,
		&m.Dosage,
		&m.Frequency,
		&stockDays,
		&alertDate,
		&m.Active,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}

	m.Category = medications.Category(category)
	if stockDays.Valid {
		v := int(stockDays.Int64)
		m.StockDays = &v
	}
	if alertDate.Valid {
		t := alertDate.Time
		m.StockAlertDate = &t
	}

	return m, nil
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
