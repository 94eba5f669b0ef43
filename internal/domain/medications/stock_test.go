package medications

import (
	"testing"
	"time"
)

func datePtr(t time.Time) *time.Time { return &t }
func intPtr(v int) *int              { return &v }

func TestIsLowStock(t *testing.T) {
	today := time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC) // lunes, con hora

	cases := []struct {
		name string
		med  Medication
		want bool
	}{
		{
			name: "stock menor que días hasta alerta",
			med: Medication{
				Active:         true,
				StockDays:      intPtr(3),
				StockAlertDate: datePtr(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)),
			},
			want: true,
		},
		{
			name: "stock igual a días hasta alerta no es low",
			med: Medication{
				Active:         true,
				StockDays:      intPtr(5),
				StockAlertDate: datePtr(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)),
			},
			want: false,
		},
		{
			name: "fecha de alerta ya pasada deja de marcar low",
			med: Medication{
				Active:         true,
				StockDays:      intPtr(0),
				StockAlertDate: datePtr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
			},
			want: false,
		},
		{
			name: "fecha de alerta hoy deja de marcar low",
			med: Medication{
				Active:         true,
				StockDays:      intPtr(0),
				StockAlertDate: datePtr(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)),
			},
			want: false,
		},
		{
			name: "sin stock trackeado",
			med: Medication{
				Active:         true,
				StockAlertDate: datePtr(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)),
			},
			want: false,
		},
		{
			name: "medicamento inactivo nunca alerta",
			med: Medication{
				Active:         false,
				StockDays:      intPtr(0),
				StockAlertDate: datePtr(time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)),
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsLowStock(tc.med, today); got != tc.want {
				t.Fatalf("IsLowStock = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIsAlertOverdue(t *testing.T) {
	today := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

	past := Medication{Active: true, StockAlertDate: datePtr(time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC))}
	if !IsAlertOverdue(past, today) {
		t.Fatal("expected overdue for past alert date")
	}

	sameDay := Medication{Active: true, StockAlertDate: datePtr(time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC))}
	if !IsAlertOverdue(sameDay, today) {
		t.Fatal("expected overdue when alert date is today")
	}

	future := Medication{Active: true, StockAlertDate: datePtr(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC))}
	if IsAlertOverdue(future, today) {
		t.Fatal("expected not overdue for future alert date")
	}

	none := Medication{Active: true}
	if IsAlertOverdue(none, today) {
		t.Fatal("expected not overdue without alert date")
	}
}

func TestDaysUntil_IgnoresTimeOfDay(t *testing.T) {
	today := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	target := time.Date(2025, 6, 3, 0, 1, 0, 0, time.UTC)

	if got := DaysUntil(target, today); got != 1 {
		t.Fatalf("DaysUntil = %d, want 1", got)
	}
}
