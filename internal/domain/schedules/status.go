package schedules

import "time"

// Status es una proyección recalculada en cada lectura, nunca un estado
// persistido: los consumidores no deben tratarla como fuente de verdad.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// DueAt construye el instante de vencimiento del horario para la fecha de
// evaluación: año/mes/día de la fecha + hora/minuto del horario, sin
// segundos ni nanosegundos.
func DueAt(s Schedule, date time.Time) time.Time {
	hour, minute, err := ParseTimeOfDay(s.TimeOfDay)
	if err != nil {
		// El borde valida TimeOfDay al crear/actualizar; un valor malformado
		// acá es data sucia y lo tratamos como 00:00 en vez de panickear.
		hour, minute = 0, 0
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, date.Location())
}

// StatusAt clasifica el horario en el instante de evaluación.
// completedToday manda: una toma registrada tarde sigue siendo "completed",
// nunca vuelve retroactivamente a "overdue". En el minuto exacto de
// vencimiento la dosis todavía no está atrasada: igualdad = pending.
func StatusAt(s Schedule, at time.Time, completedToday bool) Status {
	if completedToday {
		return StatusCompleted
	}
	if at.After(DueAt(s, at)) {
		return StatusOverdue
	}
	return StatusPending
}
