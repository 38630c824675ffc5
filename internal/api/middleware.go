// Package api implements the vizdeck REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/nordvik/vizdeck/internal/store"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

type ctxKey int

const userIDKey ctxKey = iota

// AuthMiddleware resolves the calling user.
//
// In token mode requests must carry "Authorization: Bearer <token>" matching
// a registered user's API token. In disabled mode the caller's identity is
// taken from the X-User-ID header (local development and tests); absent that
// the request proceeds anonymously and owner-gated operations will be
// forbidden.
func AuthMiddleware(mode string, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mode != AuthModeToken {
				if id := r.Header.Get("X-User-ID"); id != "" {
					r = r.WithContext(context.WithValue(r.Context(), userIDKey, id))
				}
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			u, err := users.GetUserByToken(r.Context(), strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, u.ID)))
		})
	}
}

// UserResolver looks up users by API token.
type UserResolver interface {
	GetUserByToken(ctx context.Context, token string) (*store.User, error)
}

// currentUser returns the authenticated user id, or "" for anonymous.
func currentUser(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}
