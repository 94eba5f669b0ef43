package notify

import "context"

// Notification es el payload mínimo de un recordatorio de dosis.
type Notification struct {
	Title string
	Body  string
}

// Notifier entrega una notificación a un usuario. El dispatcher de
// recordatorios no sabe ni le importa el canal (push, telegram, lo que sea).
type Notifier interface {
	Send(ctx context.Context, userID string, n Notification) error
}
