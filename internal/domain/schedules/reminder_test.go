package schedules

import (
	"testing"
	"time"
)

func TestReminderAt(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		sch  Schedule
		want time.Time
	}{
		{
			name: "lead positivo resta minutos",
			sch:  Schedule{TimeOfDay: "08:00", ReminderLeadMinutes: 15},
			want: day.Add(7*time.Hour + 45*time.Minute),
		},
		{
			name: "lead cero devuelve el vencimiento",
			sch:  Schedule{TimeOfDay: "08:00", ReminderLeadMinutes: 0},
			want: day.Add(8 * time.Hour),
		},
		{
			name: "cruza medianoche hacia el día anterior",
			sch:  Schedule{TimeOfDay: "00:05", ReminderLeadMinutes: 10},
			want: day.Add(-5 * time.Minute), // 23:55 del 9 de junio
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ReminderAt(tc.sch, day)
			if !got.Equal(tc.want) {
				t.Fatalf("ReminderAt = %v, want %v", got, tc.want)
			}
		})
	}
}
