package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
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
	Name           string
	Category       string
	Dosage         string
	Frequency      string
	StockDays      *int
	StockAlertDate *time.Time
}

func (s *Service) Create(ctx context.Context, memberID string, in CreateInput) (Medication, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}

	cat, err := parseCategory(in.Category)
	if err != nil {
		return Medication{}, err
	}

	// Invariante: stock, si viene, no puede ser negativo.
	if in.StockDays != nil && *in.StockDays < 0 {
		return Medication{}, ErrInvalidInput
	}

	now := s.now()
	m := Medication{
		ID:             uuid.NewString(),
		MemberID:       memberID,
		Name:           strings.TrimSpace(in.Name),
		Category:       cat,
		Dosage:         strings.TrimSpace(in.Dosage),
		Frequency:      strings.TrimSpace(in.Frequency),
		StockDays:      in.StockDays,
		StockAlertDate: in.StockAlertDate,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// PatchStockDays / PatchAlertDate distinguen "campo ausente" de null (limpiar).
type PatchStockDays struct {
	Present bool
	Value   *int
}

type PatchAlertDate struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	Name           *string
	Category       *string
	Dosage         *string
	Frequency      *string
	StockDays      PatchStockDays
	StockAlertDate PatchAlertDate
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = name
	}
	if in.Category != nil {
		cat, err := parseCategory(*in.Category)
		if err != nil {
			return Medication{}, err
		}
		m.Category = cat
	}
	if in.Dosage != nil {
		m.Dosage = strings.TrimSpace(*in.Dosage)
	}
	if in.Frequency != nil {
		m.Frequency = strings.TrimSpace(*in.Frequency)
	}
	if in.StockDays.Present {
		if in.StockDays.Value != nil && *in.StockDays.Value < 0 {
			return Medication{}, ErrInvalidInput
		}
		m.StockDays = in.StockDays.Value
	}
	if in.StockAlertDate.Present {
		m.StockAlertDate = in.StockAlertDate.Value
	}

	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// Deactivate marca el medicamento como inactivo (no se borra; las tomas
// históricas siguen referenciándolo).
func (s *Service) Deactivate(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, err
	}

	if m.Active {
		m.Active = false
		m.UpdatedAt = s.now()
		if err := s.repo.Update(ctx, m); err != nil {
			return Medication{}, err
		}
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Medication{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByMember(ctx context.Context, memberID string) ([]Medication, error) {
	return s.repo.ListByMember(ctx, memberID)
}

func parseCategory(raw string) (Category, error) {
	switch Category(strings.TrimSpace(raw)) {
	case CategoryRegular, CategorySupplement, CategoryAsNeeded, CategoryInhaler, CategoryFleaTick, CategoryHeartworm:
		return Category(strings.TrimSpace(raw)), nil
	case "":
		return CategoryRegular, nil
	default:
		return "", ErrInvalidInput
	}
}
