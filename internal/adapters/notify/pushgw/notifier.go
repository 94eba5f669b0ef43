package pushgw

import (
	"context"
	"os"
	"strings"

	"household-med-tracker/internal/platform/logger"
	"household-med-tracker/internal/ports/notify"
)

// Notifier implementa notify.Notifier contra el push gateway.
// Si NOTIFY_DRY_RUN=true (env), solo loguea: modo dev sin gateway.
type Notifier struct {
	client *Client
	log    logger.Logger
	dryRun bool
}

func NewNotifier(client *Client, log logger.Logger) *Notifier {
	dryRun := strings.EqualFold(strings.TrimSpace(os.Getenv("NOTIFY_DRY_RUN")), "true")
	return &Notifier{
		client: client,
		log:    log,
		dryRun: dryRun,
	}
}

func (n *Notifier) Send(ctx context.Context, userID string, msg notify.Notification) error {
	if n.dryRun {
		n.log.Info("notification dry run", map[string]any{
			"user_id": userID,
			"title":   msg.Title,
		})
		return nil
	}

	if n == nil || n.client == nil || !n.client.IsConfigured() {
		// Preferimos fallar explícito en vez de tragarnos recordatorios.
		return ErrPushNotConfigured
	}

	return n.client.Push(ctx, userID, msg.Title, msg.Body)
}
