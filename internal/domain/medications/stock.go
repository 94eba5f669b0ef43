package medications

import "time"

// Reglas de stock bajo.
//
// Un medicamento está "low stock" solo mientras la fecha de alerta sigue en el
// futuro Y los días de suministro restantes son estrictamente menores que los
// días que faltan para esa fecha. Una vez pasada la fecha de alerta el flag
// desaparece y el medicamento solo aparece en la lista de alertas vencidas.
// Esa asimetría viene del comportamiento original y se conserva tal cual;
// no "arreglarla" sin una decisión de producto.

// DaysUntil devuelve los días calendario entre today y target
// (positivo = target en el futuro, 0 = hoy, negativo = ya pasó).
func DaysUntil(target, today time.Time) int {
	t := startOfDay(target)
	d := startOfDay(today)
	return int(t.Sub(d).Hours() / 24)
}

// IsLowStock indica si el medicamento debe marcarse como stock bajo hoy.
func IsLowStock(m Medication, today time.Time) bool {
	if !m.Active || m.StockDays == nil || m.StockAlertDate == nil {
		return false
	}
	daysUntilAlert := DaysUntil(*m.StockAlertDate, today)
	if daysUntilAlert <= 0 {
		return false
	}
	return *m.StockDays < daysUntilAlert
}

// IsAlertOverdue indica si la fecha de alerta de stock ya pasó.
func IsAlertOverdue(m Medication, today time.Time) bool {
	if !m.Active || m.StockAlertDate == nil {
		return false
	}
	return DaysUntil(*m.StockAlertDate, today) <= 0
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
