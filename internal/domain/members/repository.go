package members

import "context"

type Repository interface {
	Create(ctx context.Context, m Member) error
	Update(ctx context.Context, m Member) error
	GetByID(ctx context.Context, id string) (Member, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Member, error)
	// ListAll existe para el dispatcher de recordatorios, que barre todos
	// los hogares; los handlers nunca lo usan.
	ListAll(ctx context.Context) ([]Member, error)
	Delete(ctx context.Context, id string) error
}
