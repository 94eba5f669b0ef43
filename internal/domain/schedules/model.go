package schedules

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// Weekday es el tag minúsculo de 3 letras usado en la API y en storage.
// El índice canónico es el de time.Weekday: Sunday=0 .. Saturday=6.
type Weekday string

const (
	Sun Weekday = "sun"
	Mon Weekday = "mon"
	Tue Weekday = "tue"
	Wed Weekday = "wed"
	Thu Weekday = "thu"
	Fri Weekday = "fri"
	Sat Weekday = "sat"
)

var weekdayTags = [7]Weekday{Sun, Mon, Tue, Wed, Thu, Fri, Sat}

// WeekdayOf mapea la fecha al tag de día de semana.
func WeekdayOf(t time.Time) Weekday {
	return weekdayTags[int(t.Weekday())]
}

// WeekdayAt es la inversa de WeekdayIndex; entrega "" fuera de rango.
func WeekdayAt(index int) Weekday {
	if index < 0 || index > 6 {
		return ""
	}
	return weekdayTags[index]
}

// WeekdayIndex devuelve el índice canónico (Sunday=0 .. Saturday=6).
func WeekdayIndex(w Weekday) int {
	for i, tag := range weekdayTags {
		if tag == w {
			return i
		}
	}
	return -1
}

// ParseWeekday valida un tag en el borde, antes de entrar al motor.
func ParseWeekday(raw string) (Weekday, error) {
	w := Weekday(strings.ToLower(strings.TrimSpace(raw)))
	if WeekdayIndex(w) < 0 {
		return "", fmt.Errorf("%w: unknown weekday %q", ErrInvalidInput, raw)
	}
	return w, nil
}

// ParseTimeOfDay valida el formato "HH:mm" de 24h con cero a la izquierda.
// Ese formato estricto es lo que permite ordenar horarios por comparación
// lexicográfica de strings.
func ParseTimeOfDay(raw string) (hour, minute int, err error) {
	raw = strings.TrimSpace(raw)
	if len(raw) != 5 || raw[2] != ':' {
		return 0, 0, fmt.Errorf("%w: time of day must be HH:mm", ErrInvalidInput)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, 0, fmt.Errorf("%w: time of day must be HH:mm", ErrInvalidInput)
		}
	}
	hour = int(raw[0]-'0')*10 + int(raw[1]-'0')
	minute = int(raw[3]-'0')*10 + int(raw[4]-'0')
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time of day out of range", ErrInvalidInput)
	}
	return hour, minute, nil
}

// Schedule es una regla semanal de dosificación de un medicamento:
// hora del día + conjunto de días activos. Un conjunto vacío significa
// "nunca vence" (caso degenerado válido, no un error).
type Schedule struct {
	ID           string
	MedicationID string

	TimeOfDay string // "HH:mm", validado en el borde
	Days      []Weekday

	Enabled             bool
	ReminderLeadMinutes int

	CreatedAt time.Time
	UpdatedAt time.Time
}
