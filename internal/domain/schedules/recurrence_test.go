package schedules

import (
	"testing"
	"time"
)

// lunes 10 de junio de 2024
var monday = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func TestIsActiveOnDate(t *testing.T) {
	cases := []struct {
		name string
		sch  Schedule
		date time.Time
		want bool
	}{
		{
			name: "día incluido",
			sch:  Schedule{Enabled: true, Days: []Weekday{Mon, Wed, Fri}},
			date: monday,
			want: true,
		},
		{
			name: "día no incluido",
			sch:  Schedule{Enabled: true, Days: []Weekday{Tue, Thu}},
			date: monday,
			want: false,
		},
		{
			name: "deshabilitado nunca vence aunque el día matchee",
			sch:  Schedule{Enabled: false, Days: []Weekday{Mon}},
			date: monday,
			want: false,
		},
		{
			name: "set vacío es válido pero nunca vence",
			sch:  Schedule{Enabled: true, Days: nil},
			date: monday,
			want: false,
		},
		{
			name: "domingo mapea a sun",
			sch:  Schedule{Enabled: true, Days: []Weekday{Sun}},
			date: monday.AddDate(0, 0, 6), // domingo 16
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsActiveOnDate(tc.sch, tc.date); got != tc.want {
				t.Fatalf("IsActiveOnDate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseWeekday(t *testing.T) {
	w, err := ParseWeekday("  WED ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != Wed {
		t.Fatalf("got %q, want %q", w, Wed)
	}

	if _, err := ParseWeekday("wednesday"); err == nil {
		t.Fatal("expected error for unknown tag")
	}
}

func TestWeekdayIndex(t *testing.T) {
	// Índice canónico: Sunday=0 .. Saturday=6.
	if got := WeekdayIndex(Sun); got != 0 {
		t.Fatalf("index(sun) = %d, want 0", got)
	}
	if got := WeekdayIndex(Sat); got != 6 {
		t.Fatalf("index(sat) = %d, want 6", got)
	}
	if got := WeekdayIndex(Weekday("xxx")); got != -1 {
		t.Fatalf("index(xxx) = %d, want -1", got)
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		raw     string
		hour    int
		minute  int
		wantErr bool
	}{
		{raw: "08:30", hour: 8, minute: 30},
		{raw: "00:00", hour: 0, minute: 0},
		{raw: "23:59", hour: 23, minute: 59},
		{raw: "8:30", wantErr: true},  // sin cero a la izquierda
		{raw: "24:00", wantErr: true}, // hora fuera de rango
		{raw: "12:60", wantErr: true},
		{raw: "1230", wantErr: true},
		{raw: "ab:cd", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			h, m, err := ParseTimeOfDay(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h != tc.hour || m != tc.minute {
				t.Fatalf("got %02d:%02d, want %02d:%02d", h, m, tc.hour, tc.minute)
			}
		})
	}
}
