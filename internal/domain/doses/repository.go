package doses

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, d DoseRecord) error
	GetByID(ctx context.Context, id string) (DoseRecord, error)
	ListByMember(ctx context.Context, memberID string, filter ListFilter) ([]DoseRecord, error)
	Delete(ctx context.Context, id string) error
}

type ListFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}
