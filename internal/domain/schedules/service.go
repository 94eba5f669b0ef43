package schedules

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
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

type CreateInput struct {
	TimeOfDay           string
	Days                []string
	Enabled             *bool // nil = true
	ReminderLeadMinutes int
}

func (s *Service) Create(ctx context.Context, medicationID string, in CreateInput) (Schedule, error) {
	medicationID = strings.TrimSpace(medicationID)
	if medicationID == "" {
		return Schedule{}, ErrInvalidInput
	}

	if _, _, err := ParseTimeOfDay(in.TimeOfDay); err != nil {
		return Schedule{}, err
	}
	days, err := normalizeDays(in.Days)
	if err != nil {
		return Schedule{}, err
	}
	if in.ReminderLeadMinutes < 0 {
		return Schedule{}, ErrInvalidInput
	}

	enabled := true
	if in.Enabled != nil {
		enabled = *in.Enabled
	}

	now := s.now()
	sch := Schedule{
		ID:                  uuid.NewString(),
		MedicationID:        medicationID,
		TimeOfDay:           strings.TrimSpace(in.TimeOfDay),
		Days:                days,
		Enabled:             enabled,
		ReminderLeadMinutes: in.ReminderLeadMinutes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, sch); err != nil {
		return Schedule{}, err
	}
	return sch, nil
}

type UpdateInput struct {
	TimeOfDay           *string
	Days                *[]string
	Enabled             *bool
	ReminderLeadMinutes *int
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Schedule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Schedule{}, ErrInvalidInput
	}

	sch, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Schedule{}, err
	}

	if in.TimeOfDay != nil {
		if _, _, err := ParseTimeOfDay(*in.TimeOfDay); err != nil {
			return Schedule{}, err
		}
		sch.TimeOfDay = strings.TrimSpace(*in.TimeOfDay)
	}
	if in.Days != nil {
		days, err := normalizeDays(*in.Days)
		if err != nil {
			return Schedule{}, err
		}
		sch.Days = days
	}
	if in.Enabled != nil {
		sch.Enabled = *in.Enabled
	}
	if in.ReminderLeadMinutes != nil {
		if *in.ReminderLeadMinutes < 0 {
			return Schedule{}, ErrInvalidInput
		}
		sch.ReminderLeadMinutes = *in.ReminderLeadMinutes
	}

	sch.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, sch); err != nil {
		return Schedule{}, err
	}
	return sch, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Schedule, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Schedule{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByMedication(ctx context.Context, medicationID string) ([]Schedule, error) {
	return s.repo.ListByMedication(ctx, medicationID)
}

// Delete borra el horario. Las tomas históricas que lo referencian quedan
// huérfanas a propósito; el motor las tolera.
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

// normalizeDays valida cada tag, deduplica y deja el set en orden canónico
// (Sunday=0 .. Saturday=6). Un set vacío es válido: "nunca vence".
func normalizeDays(in []string) ([]Weekday, error) {
	seen := map[Weekday]struct{}{}
	out := make([]Weekday, 0, len(in))

	for _, raw := range in {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		w, err := ParseWeekday(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}

	sort.Slice(out, func(i, j int) bool {
		return WeekdayIndex(out[i]) < WeekdayIndex(out[j])
	})
	return out, nil
}
