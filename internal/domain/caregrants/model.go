package caregrants

import "time"

// Scope delimita qué puede hacer un cuidador sobre un miembro compartido.
type Scope string

const (
	ScopeMemberRead        Scope = "member:read"
	ScopeMemberEditProfile Scope = "member:edit_profile"
	ScopeMedsManage        Scope = "meds:manage"
	ScopeDosesRead         Scope = "doses:read"
	ScopeDosesLog          Scope = "doses:log"
	ScopeDosesDelete       Scope = "doses:delete"
)

type Status string

const (
	StatusInvited Status = "invited"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Grant otorga acceso delegado de un cuidador a un miembro del hogar.
type Grant struct {
	ID string

	MemberID string

	OwnerUserID     string // quien comparte
	CaregiverUserID string // cuidador delegado

	Scopes []Scope
	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
	RevokedAt *time.Time
}
