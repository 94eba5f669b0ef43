package caregrants

import "context"

type Repository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	ListByMember(ctx context.Context, memberID string) ([]Grant, error)
	GetActiveGrant(ctx context.Context, memberID, caregiverUserID string) (Grant, error)
	ListByCaregiver(ctx context.Context, caregiverUserID string) ([]Grant, error)
}
