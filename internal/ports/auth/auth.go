package auth

import "context"

// Claims es lo que el servicio sabe del usuario autenticado. El user id es
// lo único que el dominio usa (owner de miembros, cuidador en grants).
type Claims struct {
	UserID string
	Email  string
}

// AuthVerifier valida un token opaco contra el IAM externo.
// Con verifier nil el middleware corre en modo dev (X-Debug-User-ID).
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
