package medications

import "time"

// Category clasifica el medicamento.
// @Enum regular, supplement, as_needed, inhaler, flea_tick, heartworm
type Category string

const (
	CategoryRegular    Category = "regular"
	CategorySupplement Category = "supplement"
	CategoryAsNeeded   Category = "as_needed"
	CategoryInhaler    Category = "inhaler"
	CategoryFleaTick   Category = "flea_tick"
	CategoryHeartworm  Category = "heartworm"
)

// Medication pertenece a exactamente un miembro del hogar.
// Dosage y Frequency son texto libre ("2 ml", "cada 12h").
type Medication struct {
	ID       string
	MemberID string

	Name     string
	Category Category

	Dosage    string
	Frequency string

	// Stock restante en días de suministro. nil = no se trackea stock.
	StockDays      *int
	StockAlertDate *time.Time

	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
