package postgres

import (
	"context"
	"database/sql"
	"strings"

	"household-med-tracker/internal/domain/schedules"
)

type SchedulesRepo struct {
	db *sql.DB
}

func NewSchedulesRepo(db *sql.DB) *SchedulesRepo {
	return &SchedulesRepo{db: db}
}

func (r *SchedulesRepo) Create(ctx context.Context, s schedules.Schedule) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (
			id, medication_id,
			time_of_day, days,
			enabled, reminder_lead_minutes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		s.ID,
		s.MedicationID,
		s.TimeOfDay,
		daysToTextArray(s.Days),
		s.Enabled,
		s.ReminderLeadMinutes,
		s.CreatedAt,
		s.UpdatedAt,
	)
	return err
}

func (r *SchedulesRepo) Update(ctx context.Context, s schedules.Schedule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE schedules
		SET
			time_of_day = $2,
			days = $3,
			enabled = $4,
			reminder_lead_minutes = $5,
			updated_at = $6
		WHERE id = $1
	`,
		s.ID,
		s.TimeOfDay,
		daysToTextArray(s.Days),
		s.Enabled,
		s.ReminderLeadMinutes,
		s.UpdatedAt,
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

func (r *SchedulesRepo) GetByID(ctx context.Context, id string) (schedules.Schedule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return schedules.Schedule{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, medication_id,
			time_of_day, days,
			enabled, reminder_lead_minutes,
			created_at, updated_at
		FROM schedules
		WHERE id = $1
	`, id)

	return scanSchedule(row.Scan)
}

func (r *SchedulesRepo) ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, medication_id,
			time_of_day, days,
			enabled, reminder_lead_minutes,
			created_at, updated_at
		FROM schedules
		WHERE medication_id = $1
		ORDER BY time_of_day ASC
	`, medicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]schedules.Schedule, 0)
	for rows.Next() {
		s, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

func (r *SchedulesRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM schedules
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

func scanSchedule(scan func(...any) error) (schedules.Schedule, error) {
	var s schedules.Schedule
	var days []string

	if err := scan(
		&s.ID,
		&s.MedicationID,
		&s.TimeOfDay,
		&days,
		&s.Enabled,
		&s.ReminderLeadMinutes,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return schedules.Schedule{}, ErrNotFound
		}
		return schedules.Schedule{}, err
	}

	s.Days = textArrayToDays(days)
	return s, nil
}

// helpers
func daysToTextArray(in []schedules.Weekday) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, d := range in {
		out = append(out, string(d))
	}
	return out
}

func textArrayToDays(in []string) []schedules.Weekday {
	if len(in) == 0 {
		return []schedules.Weekday{}
	}
	out := make([]schedules.Weekday, 0, len(in))
	for _, d := range in {
		out = append(out, schedules.Weekday(d))
	}
	return out
}
