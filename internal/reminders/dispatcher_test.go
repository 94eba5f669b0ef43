package reminders

import (
	"context"
	"testing"
	"time"

	"household-med-tracker/internal/domain/doses"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/domain/schedules"
	"household-med-tracker/internal/platform/logger"
	"household-med-tracker/internal/ports/notify"
)

type fakeMembers struct{ items []members.Member }

func (f *fakeMembers) ListAll(_ context.Context) ([]members.Member, error) {
	return f.items, nil
}

type fakeMedications struct{ items []medications.Medication }

func (f *fakeMedications) ListByMember(_ context.Context, memberID string) ([]medications.Medication, error) {
	out := []medications.Medication{}
	for _, m := range f.items {
		if m.MemberID == memberID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeSchedules struct{ items []schedules.Schedule }

func (f *fakeSchedules) ListByMedication(_ context.Context, medicationID string) ([]schedules.Schedule, error) {
	out := []schedules.Schedule{}
	for _, s := range f.items {
		if s.MedicationID == medicationID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeDoses struct{ items []doses.DoseRecord }

func (f *fakeDoses) ListByMember(_ context.Context, memberID string, filter doses.ListFilter) ([]doses.DoseRecord, error) {
	out := []doses.DoseRecord{}
	for _, d := range f.items {
		if d.MemberID != memberID {
			continue
		}
		if filter.From != nil && d.TakenAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !d.TakenAt.Before(*filter.To) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

type sentNotification struct {
	userID string
	msg    notify.Notification
}

type fakeNotifier struct{ sent []sentNotification }

func (f *fakeNotifier) Send(_ context.Context, userID string, msg notify.Notification) error {
	f.sent = append(f.sent, sentNotification{userID: userID, msg: msg})
	return nil
}

func testDispatcher(m *fakeMembers, md *fakeMedications, sc *fakeSchedules, ds *fakeDoses, n *fakeNotifier) *Dispatcher {
	log := logger.New(logger.Options{Level: logger.Error})
	return NewDispatcher(m, md, sc, ds, n, log)
}

func TestTickFiresAtReminderMinute(t *testing.T) {
	mem := members.Member{ID: "mem-1", OwnerUserID: "user-1", Name: "Luna", Type: members.TypePet}
	med := medications.Medication{ID: "med-a", MemberID: "mem-1", Name: "Apoquel", Active: true}
	sch := schedules.Schedule{
		ID: "sch-1", MedicationID: "med-a", TimeOfDay: "08:00",
		Days: []schedules.Weekday{schedules.Mon}, Enabled: true, ReminderLeadMinutes: 15,
	}

	notifier := &fakeNotifier{}
	d := testDispatcher(
		&fakeMembers{items: []members.Member{mem}},
		&fakeMedications{items: []medications.Medication{med}},
		&fakeSchedules{items: []schedules.Schedule{sch}},
		&fakeDoses{},
		notifier,
	)

	// lunes 10/6 a las 07:45: exactamente el instante de recordatorio.
	at := time.Date(2024, 6, 10, 7, 45, 30, 0, time.UTC)
	if err := d.Tick(context.Background(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.sent))
	}
	if notifier.sent[0].userID != "user-1" {
		t.Fatalf("notified %q, want user-1", notifier.sent[0].userID)
	}

	// Un minuto antes o después: silencio.
	notifier.sent = nil
	if err := d.Tick(context.Background(), at.Add(-time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.Tick(context.Background(), at.Add(time.Minute)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("got %d notifications outside the window, want 0", len(notifier.sent))
	}
}

func TestTickSkipsWhenDoseAlreadyLogged(t *testing.T) {
	mem := members.Member{ID: "mem-1", OwnerUserID: "user-1", Name: "Abuela", Type: members.TypeHuman}
	med := medications.Medication{ID: "med-a", MemberID: "mem-1", Name: "Enalapril", Active: true}
	sch := schedules.Schedule{
		ID: "sch-1", MedicationID: "med-a", TimeOfDay: "20:00",
		Days: []schedules.Weekday{schedules.Mon}, Enabled: true, ReminderLeadMinutes: 10,
	}

	takenAt := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)
	notifier := &fakeNotifier{}
	d := testDispatcher(
		&fakeMembers{items: []members.Member{mem}},
		&fakeMedications{items: []medications.Medication{med}},
		&fakeSchedules{items: []schedules.Schedule{sch}},
		&fakeDoses{items: []doses.DoseRecord{
			// Tomada temprano, ad-hoc: el recordatorio se calla igual.
			{ID: "d-1", MemberID: "mem-1", MedicationID: "med-a", TakenAt: takenAt},
		}},
		notifier,
	)

	at := time.Date(2024, 6, 10, 19, 50, 0, 0, time.UTC)
	if err := d.Tick(context.Background(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("got %d notifications, want 0", len(notifier.sent))
	}
}

func TestTickMidnightRollover(t *testing.T) {
	mem := members.Member{ID: "mem-1", OwnerUserID: "user-1", Name: "Luna", Type: members.TypePet}
	med := medications.Medication{ID: "med-a", MemberID: "mem-1", Name: "Heartgard", Active: true}
	// Vence martes 00:05; con lead 10 el recordatorio cae lunes 23:55.
	sch := schedules.Schedule{
		ID: "sch-1", MedicationID: "med-a", TimeOfDay: "00:05",
		Days: []schedules.Weekday{schedules.Tue}, Enabled: true, ReminderLeadMinutes: 10,
	}

	notifier := &fakeNotifier{}
	d := testDispatcher(
		&fakeMembers{items: []members.Member{mem}},
		&fakeMedications{items: []medications.Medication{med}},
		&fakeSchedules{items: []schedules.Schedule{sch}},
		&fakeDoses{},
		notifier,
	)

	at := time.Date(2024, 6, 10, 23, 55, 0, 0, time.UTC) // lunes a la noche
	if err := d.Tick(context.Background(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.sent))
	}
}

func TestTickIgnoresInactiveMedication(t *testing.T) {
	mem := members.Member{ID: "mem-1", OwnerUserID: "user-1", Name: "Luna", Type: members.TypePet}
	med := medications.Medication{ID: "med-a", MemberID: "mem-1", Name: "Viejo", Active: false}
	sch := schedules.Schedule{
		ID: "sch-1", MedicationID: "med-a", TimeOfDay: "08:00",
		Days: []schedules.Weekday{schedules.Mon}, Enabled: true, ReminderLeadMinutes: 15,
	}

	notifier := &fakeNotifier{}
	d := testDispatcher(
		&fakeMembers{items: []members.Member{mem}},
		&fakeMedications{items: []medications.Medication{med}},
		&fakeSchedules{items: []schedules.Schedule{sch}},
		&fakeDoses{},
		notifier,
	)

	at := time.Date(2024, 6, 10, 7, 45, 0, 0, time.UTC)
	if err := d.Tick(context.Background(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("got %d notifications, want 0", len(notifier.sent))
	}
}
