package reminders

import (
	"context"
	"fmt"
	"time"

	"household-med-tracker/internal/domain/doses"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/domain/schedules"
	"household-med-tracker/internal/platform/logger"
	"household-med-tracker/internal/ports/notify"

	"github.com/robfig/cron/v3"
)

// Fuentes del dispatcher. ListAll barre todos los hogares: es el único
// consumidor con esa vista global.
type MemberSource interface {
	ListAll(ctx context.Context) ([]members.Member, error)
}

type MedicationSource interface {
	ListByMember(ctx context.Context, memberID string) ([]medications.Medication, error)
}

type ScheduleSource interface {
	ListByMedication(ctx context.Context, medicationID string) ([]schedules.Schedule, error)
}

type DoseSource interface {
	ListByMember(ctx context.Context, memberID string, filter doses.ListFilter) ([]doses.DoseRecord, error)
}

// Dispatcher corre un tick por minuto y notifica al dueño cuando el
// instante de recordatorio de un horario cae en ese minuto. Si la toma ya
// está registrada, el recordatorio se calla.
type Dispatcher struct {
	members     MemberSource
	medications MedicationSource
	schedules   ScheduleSource
	doses       DoseSource

	notifier notify.Notifier
	log      logger.Logger
	now      func() time.Time

	cron *cron.Cron
}

func NewDispatcher(m MemberSource, md MedicationSource, sc ScheduleSource, ds DoseSource, n notify.Notifier, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		members:     m,
		medications: md,
		schedules:   sc,
		doses:       ds,
		notifier:    n,
		log:         log,
		now:         time.Now,
		cron:        cron.New(),
	}
}

// Start registra el tick cada minuto y arranca el cron en background.
func (d *Dispatcher) Start() error {
	_, err := d.cron.AddFunc("* * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := d.Tick(ctx, d.now()); err != nil {
			d.log.Error("reminder tick failed", map[string]any{"error": err.Error()})
		}
	})
	if err != nil {
		return err
	}

	d.cron.Start()
	d.log.Info("reminder dispatcher started", nil)
	return nil
}

// Stop frena el cron y espera a que termine el tick en curso.
func (d *Dispatcher) Stop() {
	ctx := d.cron.Stop()
	<-ctx.Done()
}

// Tick evalúa el minuto que contiene `at`. Un recordatorio con lead que
// cruza medianoche se dispara el día anterior al vencimiento, por eso se
// miran las ocurrencias de hoy y de mañana.
func (d *Dispatcher) Tick(ctx context.Context, at time.Time) error {
	minuteStart := at.Truncate(time.Minute)
	minuteEnd := minuteStart.Add(time.Minute)

	household, err := d.members.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, member := range household {
		meds, err := d.medications.ListByMember(ctx, member.ID)
		if err != nil {
			return err
		}

		for _, med := range meds {
			if !med.Active {
				continue
			}

			scheds, err := d.schedules.ListByMedication(ctx, med.ID)
			if err != nil {
				return err
			}

			for _, sch := range scheds {
				for _, date := range []time.Time{at, at.AddDate(0, 0, 1)} {
					if !schedules.IsActiveOnDate(sch, date) {
						continue
					}

					remindAt := schedules.ReminderAt(sch, date)
					if remindAt.Before(minuteStart) || !remindAt.Before(minuteEnd) {
						continue
					}

					taken, err := d.alreadyTaken(ctx, member.ID, med.ID, sch.ID, date)
					if err != nil {
						return err
					}
					if taken {
						continue
					}

					if err := d.send(ctx, member, med, sch); err != nil {
						// Un push fallido no debe frenar el resto del barrido.
						d.log.Error("reminder send failed", map[string]any{
							"member_id":   member.ID,
							"schedule_id": sch.ID,
							"error":       err.Error(),
						})
					}
				}
			}
		}
	}

	return nil
}

// alreadyTaken aplica la misma regla de match que el motor: toma vinculada
// al horario, o ad-hoc del mismo medicamento en el día del vencimiento.
func (d *Dispatcher) alreadyTaken(ctx context.Context, memberID, medicationID, scheduleID string, date time.Time) (bool, error) {
	dayStart := startOfDay(date)
	dayEnd := dayStart.Add(24 * time.Hour)

	records, err := d.doses.ListByMember(ctx, memberID, doses.ListFilter{
		From: &dayStart,
		To:   &dayEnd,
	})
	if err != nil {
		return false, err
	}

	for _, rec := range records {
		if rec.MatchesOccurrence(scheduleID, medicationID) {
			return true, nil
		}
	}
	return false, nil
}

func (d *Dispatcher) send(ctx context.Context, member members.Member, med medications.Medication, sch schedules.Schedule) error {
	msg := notify.Notification{
		Title: fmt.Sprintf("Hora de %s", med.Name),
		Body:  fmt.Sprintf("%s: %s a las %s", member.Name, med.Name, sch.TimeOfDay),
	}
	return d.notifier.Send(ctx, member.OwnerUserID, msg)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
