package adherence

import (
	"context"
	"math"
	"time"

	"household-med-tracker/internal/domain/doses"
	"household-med-tracker/internal/domain/medications"
	"household-med-tracker/internal/domain/members"
	"household-med-tracker/internal/domain/schedules"
)

// Fuentes del agregador, mismas interfaces angostas que usa el projector de
// "hoy": services reales en producción, fakes en los tests.
type MemberSource interface {
	ListByOwner(ctx context.Context, ownerUserID string) ([]members.Member, error)
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

// WindowStats son los contadores de una ventana rodante. Rate es entero
// 0..100; cuando Expected es 0 el rate se reporta como 0, nunca null:
// política explícita para evitar la ambigüedad de dividir por cero.
type WindowStats struct {
	Expected int `json:"expected"`
	Taken    int `json:"taken"`
	Rate     int `json:"rate"`
}

type MemberStats struct {
	MemberID   string             `json:"member_id"`
	MemberName string             `json:"member_name"`
	MemberType members.MemberType `json:"member_type"`

	Weekly  WindowStats `json:"weekly"`
	Monthly WindowStats `json:"monthly"`
}

// Stats es un view model derivado: se recalcula en cada pedido desde el
// historial de tomas, jamás se persiste.
type Stats struct {
	Weekly  WindowStats   `json:"weekly"`
	Monthly WindowStats   `json:"monthly"`
	Members []MemberStats `json:"members"`
}

// Aggregator pliega el historial de tomas en rates de cumplimiento por
// ventana rodante (7 y 30 días terminando en la fecha de evaluación,
// inclusive) y en buckets de tendencia por día de semana.
type Aggregator struct {
	members     MemberSource
	medications MedicationSource
	schedules   ScheduleSource
	doses       DoseSource
}

func NewAggregator(m MemberSource, md MedicationSource, sc ScheduleSource, ds DoseSource) *Aggregator {
	return &Aggregator{
		members:     m,
		medications: md,
		schedules:   sc,
		doses:       ds,
	}
}

// ComputeStats calcula los rates semanal y mensual del hogar completo y el
// desglose por miembro. `at` es el instante de evaluación del caller.
func (a *Aggregator) ComputeStats(ctx context.Context, userID string, at time.Time) (Stats, error) {
	household, err := a.members.ListByOwner(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	out := Stats{Members: make([]MemberStats, 0, len(household))}

	for _, member := range household {
		weekly, monthly, err := a.memberWindows(ctx, member.ID, at)
		if err != nil {
			return Stats{}, err
		}

		out.Members = append(out.Members, MemberStats{
			MemberID:   member.ID,
			MemberName: member.Name,
			MemberType: member.Type,
			Weekly:     weekly,
			Monthly:    monthly,
		})

		out.Weekly.Expected += weekly.Expected
		out.Weekly.Taken += weekly.Taken
		out.Monthly.Expected += monthly.Expected
		out.Monthly.Taken += monthly.Taken
	}

	out.Weekly.Rate = rate(out.Weekly.Taken, out.Weekly.Expected)
	out.Monthly.Rate = rate(out.Monthly.Taken, out.Monthly.Expected)
	return out, nil
}

// memberWindows recorre una sola vez la ventana de 30 días y acumula en
// paralelo la de 7 (los últimos 7 días de la misma ventana).
func (a *Aggregator) memberWindows(ctx context.Context, memberID string, at time.Time) (weekly, monthly WindowStats, err error) {
	occ, err := a.memberOccurrences(ctx, memberID, at, 30)
	if err != nil {
		return WindowStats{}, WindowStats{}, err
	}

	weekStart := startOfDay(at).AddDate(0, 0, -6)
	for _, o := range occ {
		monthly.Expected++
		if o.taken {
			monthly.Taken++
		}
		if !o.day.Before(weekStart) {
			weekly.Expected++
			if o.taken {
				weekly.Taken++
			}
		}
	}

	weekly.Rate = rate(weekly.Taken, weekly.Expected)
	monthly.Rate = rate(monthly.Taken, monthly.Expected)
	return weekly, monthly, nil
}

// occurrence es una ocurrencia esperada (horario × día) ya resuelta contra
// el historial: taken dice si algún registro del día la matchea.
type occurrence struct {
	day      time.Time // inicio del día
	schedule schedules.Schedule
	taken    bool
}

// memberOccurrences enumera las ocurrencias esperadas de los últimos
// `windowDays` días (terminando en la fecha de `at`, inclusive) y las
// resuelve contra las tomas registradas. Una ocurrencia matchea a lo sumo
// una vez: el conteo es booleano por ocurrencia, no por registro.
func (a *Aggregator) memberOccurrences(ctx context.Context, memberID string, at time.Time, windowDays int) ([]occurrence, error) {
	meds, err := a.medications.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	type medSchedules struct {
		med    medications.Medication
		scheds []schedules.Schedule
	}
	active := make([]medSchedules, 0, len(meds))
	for _, med := range meds {
		if !med.Active {
			continue
		}
		scheds, err := a.schedules.ListByMedication(ctx, med.ID)
		if err != nil {
			return nil, err
		}
		active = append(active, medSchedules{med: med, scheds: scheds})
	}

	windowStart := startOfDay(at).AddDate(0, 0, -(windowDays - 1))
	windowEnd := startOfDay(at).Add(24 * time.Hour)

	records, err := a.doses.ListByMember(ctx, memberID, doses.ListFilter{
		From: &windowStart,
		To:   &windowEnd,
	})
	if err != nil {
		return nil, err
	}

	// Bucket de registros por día calendario, para que el match por
	// ocurrencia no re-escanee todo el historial. La clave es la fecha en
	// la zona de `at`: comparar time.Time con == mezcla locations.
	byDay := make(map[string][]doses.DoseRecord, len(records))
	for _, rec := range records {
		key := rec.TakenAt.In(at.Location()).Format(time.DateOnly)
		byDay[key] = append(byDay[key], rec)
	}

	out := make([]occurrence, 0)
	for day := windowStart; day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		dayRecords := byDay[day.Format(time.DateOnly)]
		for _, ms := range active {
			for _, sch := range ms.scheds {
				if !schedules.IsActiveOnDate(sch, day) {
					continue
				}
				o := occurrence{day: day, schedule: sch}
				for _, rec := range dayRecords {
					if rec.MatchesOccurrence(sch.ID, ms.med.ID) {
						o.taken = true
						break
					}
				}
				out = append(out, o)
			}
		}
	}
	return out, nil
}

// rate redondea 100·taken/expected al entero más cercano; 0 si no hubo
// ocurrencias esperadas.
func rate(taken, expected int) int {
	if expected <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(taken) / float64(expected)))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
