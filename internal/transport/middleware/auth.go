package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKeyAuth string

// PrincipalKey is the context key for the authenticated principal.
const PrincipalKey contextKeyAuth = "principal"

// TokenValidator verifies a bearer token and returns the principal it
// carries.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// Authenticate returns an HTTP middleware that validates the request's JWT
// Bearer token and attaches the principal to the request context. On failure
// a 401 JSON error response is returned.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, "Authentication required. Provide a Bearer token.")
				return
			}

			principal, err := validator.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeAuthError(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), PrincipalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal extracts the authenticated principal from the context.
// Returns an empty string for unauthenticated requests.
func GetPrincipal(ctx context.Context) string {
	if p, ok := ctx.Value(PrincipalKey).(string); ok {
		return p
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	// Manually construct JSON to avoid an import cycle with the transport
	// package's envelope types.
	w.Write([]byte(`{"error":{"code":401,"message":"` + message + `"}}`))
}
