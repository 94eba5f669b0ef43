package schedules

import "context"

type Repository interface {
	Create(ctx context.Context, s Schedule) error
	Update(ctx context.Context, s Schedule) error
	GetByID(ctx context.Context, id string) (Schedule, error)
	ListByMedication(ctx context.Context, medicationID string) ([]Schedule, error)
	Delete(ctx context.Context, id string) error
}
