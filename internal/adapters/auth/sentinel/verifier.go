package sentinel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"household-med-tracker/internal/ports/auth"
)

var (
	ErrTokenEmpty = errors.New("token is empty")
)

// Verifier implementa auth.AuthVerifier usando Sentinel.
// Se instancia desde el router solo cuando AUTH_BASE_URL está configurada.
type Verifier struct {
	client *Client
}

func NewVerifier(client *Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	if v == nil || v.client == nil {
		return auth.Claims{}, ErrSentinelNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	claims, err := v.client.VerifyToken(ctx, token)
	if err != nil {
		// El middleware ya decide si corta o no; acá solo anotamos el origen.
		return auth.Claims{}, fmt.Errorf("sentinel verify failed: %w", err)
	}

	claims.UserID = strings.TrimSpace(claims.UserID)
	if claims.UserID == "" {
		return auth.Claims{}, errors.New("sentinel claims missing user id")
	}

	return claims, nil
}
