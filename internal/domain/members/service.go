package members

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
	Type       string
	PetSpecies string
	Name       string
	BirthDate  *time.Time
	Notes      string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Member, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Member{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Member{}, ErrInvalidInput
	}

	typ, err := parseType(in.Type)
	if err != nil {
		return Member{}, err
	}

	var species PetSpecies
	if typ == TypePet {
		species, err = parseSpecies(in.PetSpecies)
		if err != nil {
			return Member{}, err
		}
	} else if strings.TrimSpace(in.PetSpecies) != "" {
		// species solo tiene sentido para mascotas
		return Member{}, ErrInvalidInput
	}

	now := s.now()
	m := Member{
		ID:          uuid.NewString(),
		OwnerUserID: ownerUserID,
		Type:        typ,
		PetSpecies:  species,
		Name:        strings.TrimSpace(in.Name),
		BirthDate:   in.BirthDate,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// PatchBirthDate distingue "campo ausente" de "birth_date": null (limpiar).
type PatchBirthDate struct {
	Present bool
	Value   *time.Time
}

type UpdateProfileInput struct {
	Name      *string
	Notes     *string
	BirthDate PatchBirthDate
}

// UpdateProfile aplica un PATCH real: nil = no tocar.
// La identidad (tipo, especie, owner) es inmutable una vez creado el miembro.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateProfileInput) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, ErrInvalidInput
	}

	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Member{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Member{}, ErrInvalidInput
		}
		m.Name = name
	}
	if in.Notes != nil {
		m.Notes = strings.TrimSpace(*in.Notes)
	}
	if in.BirthDate.Present {
		m.BirthDate = in.BirthDate.Value
	}

	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Member{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Member, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func parseType(raw string) (MemberType, error) {
	switch MemberType(strings.TrimSpace(raw)) {
	case TypeHuman:
		return TypeHuman, nil
	case TypePet:
		return TypePet, nil
	default:
		return "", ErrInvalidInput
	}
}

func parseSpecies(raw string) (PetSpecies, error) {
	switch PetSpecies(strings.TrimSpace(raw)) {
	case SpeciesDog, SpeciesCat, SpeciesBird, SpeciesRodent, SpeciesReptile, SpeciesOther:
		return PetSpecies(strings.TrimSpace(raw)), nil
	case "":
		// mascota sin especie declarada: la tratamos como "other"
		return SpeciesOther, nil
	default:
		return "", ErrInvalidInput
	}
}
