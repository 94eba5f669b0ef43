package schedules

import "time"

// ReminderAt calcula el instante absoluto en que debe dispararse el
// recordatorio del horario para una fecha: el vencimiento menos el lead
// time en minutos. time.Time absorbe el cruce de medianoche (un horario
// 00:05 con lead 10 recuerda a las 23:55 del día anterior). Lead 0
// devuelve el vencimiento sin cambios.
func ReminderAt(s Schedule, date time.Time) time.Time {
	due := DueAt(s, date)
	if s.ReminderLeadMinutes <= 0 {
		return due
	}
	return due.Add(-time.Duration(s.ReminderLeadMinutes) * time.Minute)
}
