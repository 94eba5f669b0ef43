package adherence

import (
	"context"
	"testing"

	"household-med-tracker/internal/domain/doses"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/domain/schedules"
)

func TestComputeTrend(t *testing.T) {
	mem := members.Member{ID: "mem-1", OwnerUserID: "user-1", Name: "Abuela", Type: members.TypeHuman}
	med := medications.Medication{ID: "med-a", MemberID: "mem-1", Name: "Enalapril", Active: true}
	sch := schedules.Schedule{
		ID: "sch-1", MedicationID: "med-a", TimeOfDay: "08:00",
		Days: []schedules.Weekday{schedules.Mon, schedules.Wed}, Enabled: true,
	}

	// Ventana actual (mar 4/6 .. lun 10/6): vence mié 5 y lun 10; solo se
	// tomó la del lunes. Ventana anterior (mar 28/5 .. lun 3/6): vence mié
	// 29 y lun 3; ninguna tomada.
	recs := []doses.DoseRecord{
		{ID: "d-1", MemberID: "mem-1", MedicationID: "med-a", ScheduleID: strptr("sch-1"), TakenAt: dayAt(0, 8)},
	}

	agg := NewAggregator(
		&fakeMembers{items: []members.Member{mem}},
		&fakeMedications{items: []medications.Medication{med}},
		&fakeSchedules{items: []schedules.Schedule{sch}},
		&fakeDoses{items: recs},
	)

	trend, err := agg.ComputeTrend(context.Background(), "user-1", evalAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if trend.CurrentRate != 50 || trend.PreviousRate != 0 {
		t.Fatalf("rates = %d/%d, want 50/0", trend.CurrentRate, trend.PreviousRate)
	}
	if trend.Delta != 50 || trend.Direction != TrendImproving {
		t.Fatalf("delta = %d (%s), want 50 improving", trend.Delta, trend.Direction)
	}

	mon := trend.Buckets[1]
	if mon.Tag != schedules.Mon || mon.Expected != 1 || mon.Taken != 1 || mon.Rate != 100 {
		t.Fatalf("monday bucket = %+v, want tag=mon {1 1 100}", mon)
	}
	wed := trend.Buckets[3]
	if wed.Expected != 1 || wed.Taken != 0 || wed.Rate != 0 {
		t.Fatalf("wednesday bucket = %+v, want {1 0 0}", wed)
	}

	if trend.BestDay != schedules.Mon {
		t.Fatalf("best day = %q, want mon", trend.BestDay)
	}
	// Todos los días sin ocurrencias ratean 0 y empatan con el miércoles:
	// gana el índice más bajo, domingo.
	if trend.WorstDay != schedules.Sun {
		t.Fatalf("worst day = %q, want sun", trend.WorstDay)
	}
}

func TestComputeTrendFlatWhenIdenticalWeeks(t *testing.T) {
	mem := members.Member{ID: "mem-1", OwnerUserID: "user-1", Name: "Luna", Type: members.TypePet}
	med := medications.Medication{ID: "med-a", MemberID: "mem-1", Name: "Apoquel", Active: true}
	sch := schedules.Schedule{
		ID: "sch-1", MedicationID: "med-a", TimeOfDay: "08:00",
		Days: []schedules.Weekday{schedules.Mon}, Enabled: true,
	}

	// Tomada el lunes de esta semana y el de la anterior: delta 0.
	recs := []doses.DoseRecord{
		{ID: "d-1", MemberID: "mem-1", MedicationID: "med-a", ScheduleID: strptr("sch-1"), TakenAt: dayAt(0, 8)},
		{ID: "d-2", MemberID: "mem-1", MedicationID: "med-a", ScheduleID: strptr("sch-1"), TakenAt: dayAt(-7, 8)},
	}

	agg := NewAggregator(
		&fakeMembers{items: []members.Member{mem}},
		&fakeMedications{items: []medications.Medication{med}},
		&fakeSchedules{items: []schedules.Schedule{sch}},
		&fakeDoses{items: recs},
	)

	trend, err := agg.ComputeTrend(context.Background(), "user-1", evalAt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trend.Delta != 0 || trend.Direction != TrendFlat {
		t.Fatalf("delta = %d (%s), want 0 flat", trend.Delta, trend.Direction)
	}
	if trend.CurrentRate != 100 || trend.PreviousRate != 100 {
		t.Fatalf("rates = %d/%d, want 100/100", trend.CurrentRate, trend.PreviousRate)
	}
}
