package schedules

import "time"

// IsActiveOnDate decide si el horario es elegible para vencer en la fecha
// dada. Función pura de (schedule, date): mismo input, mismo output.
// De eso depende la testeabilidad de todo el motor.
func IsActiveOnDate(s Schedule, date time.Time) bool {
	if !s.Enabled {
		return false
	}
	if len(s.Days) == 0 {
		return false
	}
	tag := WeekdayOf(date)
	for _, d := range s.Days {
		if d == tag {
			return true
		}
	}
	return false
}
