package schedules

import (
	"testing"
	"time"
)

func TestStatusAt(t *testing.T) {
	sch := Schedule{TimeOfDay: "12:00", Enabled: true, Days: []Weekday{Mon}}

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		at        time.Time
		completed bool
		want      Status
	}{
		{
			name: "antes del vencimiento",
			at:   day.Add(11 * time.Hour),
			want: StatusPending,
		},
		{
			name: "en el minuto exacto sigue pending",
			at:   day.Add(12 * time.Hour),
			want: StatusPending,
		},
		{
			name: "un segundo después ya está overdue",
			at:   day.Add(12*time.Hour + time.Second),
			want: StatusOverdue,
		},
		{
			name:      "completada gana aunque esté vencida",
			at:        day.Add(20 * time.Hour),
			completed: true,
			want:      StatusCompleted,
		},
		{
			name:      "completada antes de vencer",
			at:        day.Add(9 * time.Hour),
			completed: true,
			want:      StatusCompleted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StatusAt(sch, tc.at, tc.completed); got != tc.want {
				t.Fatalf("StatusAt = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDueAt(t *testing.T) {
	sch := Schedule{TimeOfDay: "08:30"}
	at := time.Date(2024, 6, 10, 17, 45, 12, 999, time.UTC)

	due := DueAt(sch, at)
	want := time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("DueAt = %v, want %v", due, want)
	}
}

func TestDueAtMalformedTimeFallsBackToMidnight(t *testing.T) {
	sch := Schedule{TimeOfDay: "garbage"}
	at := time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC)

	due := DueAt(sch, at)
	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if !due.Equal(want) {
		t.Fatalf("DueAt = %v, want %v", due, want)
	}
}
