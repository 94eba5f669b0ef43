package doses

import "time"

// DoseRecord es un hecho inmutable: una dosis fue tomada en un instante.
// Solo se crea y se borra por acción explícita del usuario, nunca se edita.
type DoseRecord struct {
	ID string

	MemberID     string
	MedicationID string

	// Una toma puede registrarse ad-hoc, sin horario vinculado.
	ScheduleID *string

	TakenAt    time.Time
	RecordedAt time.Time

	Note string
}

// MatchesOccurrence decide si la toma cuenta para una ocurrencia esperada de
// un horario: o bien referencia ese horario, o bien no referencia ninguno y
// es del mismo medicamento. Una toma que referencia un horario ya borrado
// simplemente no matchea nada: se tolera en silencio, nunca falla.
func (d DoseRecord) MatchesOccurrence(scheduleID, medicationID string) bool {
	if d.ScheduleID != nil {
		return *d.ScheduleID == scheduleID
	}
	return d.MedicationID == medicationID
}
