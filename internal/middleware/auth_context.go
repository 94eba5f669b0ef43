package middleware

import (
	"context"
	"net/http"
	"strings"

	"household-med-tracker/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Header de dev: identifica al usuario sin token cuando no hay verifier.
const debugUserHeader = "X-Debug-User-ID"

// AuthContext resuelve los claims del request y los deja en el contexto.
// Nunca corta la cadena: un request sin claims sigue, y cada handler decide
// si responde 401. Con verifier nil corre en modo dev.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := resolveClaims(r, verifier)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), claimsKey, claims),
			))
		})
	}
}

func resolveClaims(r *http.Request, verifier auth.AuthVerifier) (auth.Claims, bool) {
	if verifier == nil {
		uid := strings.TrimSpace(r.Header.Get(debugUserHeader))
		if uid == "" {
			return auth.Claims{}, false
		}
		return auth.Claims{UserID: uid}, true
	}

	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return auth.Claims{}, false
	}

	claims, err := verifier.Verify(r.Context(), token)
	if err != nil {
		// Token inválido se trata igual que token ausente.
		return auth.Claims{}, false
	}
	return claims, true
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(auth.Claims)
	return c, ok
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
