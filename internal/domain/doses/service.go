package doses

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
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
	MedicationID string
	ScheduleID   *string
	TakenAt      time.Time // zero = ahora
	Note         string
}

func (s *Service) Create(ctx context.Context, memberID string, in CreateInput) (DoseRecord, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return DoseRecord{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.MedicationID) == "" {
		return DoseRecord{}, ErrInvalidInput
	}

	var scheduleID *string
	if in.ScheduleID != nil {
		v := strings.TrimSpace(*in.ScheduleID)
		if v != "" {
			scheduleID = &v
		}
	}

	now := s.now()
	takenAt := in.TakenAt
	if takenAt.IsZero() {
		takenAt = now
	}

	d := DoseRecord{
		ID:           uuid.NewString(),
		MemberID:     memberID,
		MedicationID: strings.TrimSpace(in.MedicationID),
		ScheduleID:   scheduleID,
		TakenAt:      takenAt,
		RecordedAt:   now,
		Note:         strings.TrimSpace(in.Note),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return DoseRecord{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (DoseRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DoseRecord{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByMember(ctx context.Context, memberID string, filter ListFilter) ([]DoseRecord, error) {
	return s.repo.ListByMember(ctx, memberID, filter)
}

// Delete borra el registro (estilo auditoría: solo borrado explícito, sin update).
func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}
