package members

import "time"

// MemberType distingue personas y mascotas del hogar.
// @Enum human, pet
type MemberType string

const (
	TypeHuman MemberType = "human"
	TypePet   MemberType = "pet"
)

// PetSpecies define las especies soportadas cuando el miembro es mascota.
type PetSpecies string

const (
	SpeciesDog     PetSpecies = "dog"
	SpeciesCat     PetSpecies = "cat"
	SpeciesBird    PetSpecies = "bird"
	SpeciesRodent  PetSpecies = "rodent"
	SpeciesReptile PetSpecies = "reptile"
	SpeciesOther   PetSpecies = "other"
)

// Member representa a un integrante del hogar (persona o mascota)
// dueño de cero o más medicamentos.
type Member struct {
	ID          string
	OwnerUserID string

	Type       MemberType
	PetSpecies PetSpecies // solo aplica cuando Type == pet

	Name      string
	BirthDate *time.Time
	Notes     string

	CreatedAt time.Time
	UpdatedAt time.Time
}
