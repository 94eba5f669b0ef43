package adherence

import (
	"context"
	"time"

	"household-med-tracker/internal/domain/schedules"
)

// TrendBucket acumula las ocurrencias de la ventana de 7 días que caen en
// un día de semana dado. Weekday es el índice canónico (Sunday=0).
type TrendBucket struct {
	Weekday  int               `json:"weekday"`
	Tag      schedules.Weekday `json:"tag"`
	Expected int               `json:"expected"`
	Taken    int               `json:"taken"`
	Rate     int               `json:"rate"`
}

type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendFlat      TrendDirection = "flat"
)

// Trend compara la ventana de 7 días actual contra la inmediatamente
// anterior y desglosa la actual por día de semana.
type Trend struct {
	Buckets [7]TrendBucket `json:"buckets"`

	BestDay  schedules.Weekday `json:"best_day"`
	WorstDay schedules.Weekday `json:"worst_day"`

	CurrentRate  int            `json:"current_rate"`
	PreviousRate int            `json:"previous_rate"`
	Delta        int            `json:"delta"` // current - previous, con signo
	Direction    TrendDirection `json:"direction"`
}

// ComputeTrend agrega las ocurrencias de los últimos 14 días del hogar:
// los 7 más recientes alimentan los buckets, los 7 anteriores solo el rate
// de comparación.
func (a *Aggregator) ComputeTrend(ctx context.Context, userID string, at time.Time) (Trend, error) {
	household, err := a.members.ListByOwner(ctx, userID)
	if err != nil {
		return Trend{}, err
	}

	var out Trend
	for i := range out.Buckets {
		out.Buckets[i].Weekday = i
		out.Buckets[i].Tag = schedules.WeekdayAt(i)
	}

	weekStart := startOfDay(at).AddDate(0, 0, -6)

	var curTaken, curExpected, prevTaken, prevExpected int
	for _, member := range household {
		occ, err := a.memberOccurrences(ctx, member.ID, at, 14)
		if err != nil {
			return Trend{}, err
		}
		for _, o := range occ {
			if o.day.Before(weekStart) {
				prevExpected++
				if o.taken {
					prevTaken++
				}
				continue
			}

			curExpected++
			if o.taken {
				curTaken++
			}

			b := &out.Buckets[int(o.day.Weekday())]
			b.Expected++
			if o.taken {
				b.Taken++
			}
		}
	}

	for i := range out.Buckets {
		out.Buckets[i].Rate = rate(out.Buckets[i].Taken, out.Buckets[i].Expected)
	}

	// Empates se resuelven por el índice de semana más bajo: por eso los
	// buckets se recorren en orden y solo el estrictamente mejor/peor gana.
	best, worst := 0, 0
	for i := 1; i < len(out.Buckets); i++ {
		if out.Buckets[i].Rate > out.Buckets[best].Rate {
			best = i
		}
		if out.Buckets[i].Rate < out.Buckets[worst].Rate {
			worst = i
		}
	}
	out.BestDay = out.Buckets[best].Tag
	out.WorstDay = out.Buckets[worst].Tag

	out.CurrentRate = rate(curTaken, curExpected)
	out.PreviousRate = rate(prevTaken, prevExpected)
	out.Delta = out.CurrentRate - out.PreviousRate

	switch {
	case out.Delta > 0:
		out.Direction = TrendImproving
	case out.Delta < 0:
		out.Direction = TrendDeclining
	default:
		out.Direction = TrendFlat
	}

	return out, nil
}
