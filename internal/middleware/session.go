// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"crypto/sha256"
	"net/http"

	"github.com/gorilla/sessions"
)

type ctxKey string

const userKey ctxKey = "user"

// SessionName is the cookie name of the login session.
const SessionName = "gotham-session"

// NewSessionStore builds the cookie session store. Two 32-byte keys
// are derived from the configured secret: one for signing, one for
// content encryption.
func NewSessionStore(secret string) *sessions.CookieStore {
	authKey := sha256.Sum256([]byte(secret + "auth"))
	encKey := sha256.Sum256([]byte(secret + "encryption"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionAuth is a middleware that requires a logged-in session.
//
// It rejects requests whose session cookie carries no user identifier
// and stores the identifier in the request context for downstream
// handlers.
func SessionAuth(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, _ := store.Get(r, SessionName)
			userID, ok := session.Values["user_id"].(string)
			if !ok || userID == "" {
				http.Error(w, "authentication required", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserIDFromContext extracts the authenticated user's identifier
// from the request context. Returns an empty string if not found.
func GetUserIDFromContext(ctx context.Context) string {
	val := ctx.Value(userKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
