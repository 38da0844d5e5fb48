package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ancorit/notesauth"
	"github.com/ancorit/notesauth/provider"
)

// UnauthorizedDetail is the only message clients see for any auth failure.
const UnauthorizedDetail = "Could not validate credentials"

type userContextKey struct{}

// UserFromContext returns the user placed on ctx by [Guard].
func UserFromContext(ctx context.Context) (notesauth.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(notesauth.User)
	return user, ok
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user notesauth.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// Guard rejects requests whose bearer credential the provider does not
// accept, and otherwise places the resolved user on the request context.
func Guard(p provider.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p == nil {
				WriteUnauthorized(w)
				return
			}

			token, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteUnauthorized(w)
				return
			}

			user, ok := p.Authenticate(r.Context(), token)
			if !ok {
				WriteUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WriteUnauthorized writes the uniform 401 response.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": UnauthorizedDetail})
}

// BearerToken extracts the credential from an Authorization header value.
// The scheme is matched case-insensitively.
func BearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
