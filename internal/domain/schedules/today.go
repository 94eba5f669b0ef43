package schedules

import (
	"context"
	"sort"
	"time"

	"household-med-tracker/internal/domain/doses"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
)

// Fuentes de datos del projector. Interfaces angostas del lado consumidor,
// satisfechas por los services de cada módulo; los errores de cualquier
// fuente se propagan al caller sin modificar (sin retry, sin fallback).
type MemberSource interface {
	ListByOwner(ctx context.Context, ownerUserID string) ([]members.Member, error)
}

type MedicationSource interface {
	ListByMember(ctx context.Context, memberID string) ([]medications.Medication, error)
}

type ScheduleSource interface {
	ListByMedication(ctx context.Context, medicationID string) ([]Schedule, error)
}

type DoseSource interface {
	ListByMember(ctx context.Context, memberID string, filter doses.ListFilter) ([]doses.DoseRecord, error)
}

// TodayItem es el view model de "hoy": derivado, nunca persistido,
// regenerado en cada evaluación.
type TodayItem struct {
	ScheduleID     string
	MedicationID   string
	MedicationName string

	MemberID   string
	MemberName string
	MemberType members.MemberType

	TimeOfDay           string
	Status              Status
	Enabled             bool
	ReminderLeadMinutes int
}

// Projector arma la lista ordenada y filtrada que el usuario ve "hoy".
// Todas las dependencias entran por constructor; no hay estado compartido
// entre llamadas, así que re-evaluar en cada refresh es barato y esperado.
type Projector struct {
	members     MemberSource
	medications MedicationSource
	schedules   ScheduleSource
	doses       DoseSource
}

func NewProjector(m MemberSource, md MedicationSource, sc ScheduleSource, ds DoseSource) *Projector {
	return &Projector{
		members:     m,
		medications: md,
		schedules:   sc,
		doses:       ds,
	}
}

// Execute proyecta los horarios vigentes en la fecha de `at` para el hogar
// del usuario. `at` es el instante de evaluación provisto por el caller:
// mantenerlo como parámetro es lo que deja al motor puro y testeable.
func (p *Projector) Execute(ctx context.Context, userID string, at time.Time) ([]TodayItem, error) {
	household, err := p.members.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	dayStart := startOfDay(at)
	dayEnd := dayStart.Add(24 * time.Hour)

	out := make([]TodayItem, 0)

	for _, member := range household {
		meds, err := p.medications.ListByMember(ctx, member.ID)
		if err != nil {
			return nil, err
		}

		records, err := p.doses.ListByMember(ctx, member.ID, doses.ListFilter{
			From: &dayStart,
			To:   &dayEnd,
		})
		if err != nil {
			return nil, err
		}

		// Índices por id para que el join sea lineal (nada de scans anidados).
		// Una toma vinculada cuenta solo para su horario; una ad-hoc cuenta
		// para cualquier horario de su medicamento ese día.
		takenBySchedule := make(map[string]struct{}, len(records))
		adhocByMedication := make(map[string]struct{}, len(records))
		for _, rec := range records {
			if !rec.TakenAt.Before(dayEnd) || rec.TakenAt.Before(dayStart) {
				continue
			}
			if rec.ScheduleID != nil {
				takenBySchedule[*rec.ScheduleID] = struct{}{}
			} else {
				adhocByMedication[rec.MedicationID] = struct{}{}
			}
		}

		for _, med := range meds {
			if !med.Active {
				continue
			}

			scheds, err := p.schedules.ListByMedication(ctx, med.ID)
			if err != nil {
				return nil, err
			}

			for _, sch := range scheds {
				if !IsActiveOnDate(sch, at) {
					continue
				}

				_, linked := takenBySchedule[sch.ID]
				_, adhoc := adhocByMedication[med.ID]
				completedToday := linked || adhoc

				out = append(out, TodayItem{
					ScheduleID:          sch.ID,
					MedicationID:        med.ID,
					MedicationName:      med.Name,
					MemberID:            member.ID,
					MemberName:          member.Name,
					MemberType:          member.Type,
					TimeOfDay:           sch.TimeOfDay,
					Status:              StatusAt(sch, at, completedToday),
					Enabled:             sch.Enabled,
					ReminderLeadMinutes: sch.ReminderLeadMinutes,
				})
			}
		}
	}

	// HH:mm con cero a la izquierda: el orden lexicográfico ES el cronológico.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeOfDay < out[j].TimeOfDay
	})

	return out, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
