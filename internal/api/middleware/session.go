package middleware

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/cravings/internal/logging"
)

const SessionCookieName = "cravings_session"

// SessionRegistry knows which session ids are live and mints new ones.
type SessionRegistry interface {
	Exists(id string) bool
	NewID() string
}

// Session resolves the caller's session from its cookie. Unknown or expired
// ids are replaced with a fresh one and the cookie is reissued.
func Session(registry SessionRegistry, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				sessionID = cookie.Value
			}

			if !registry.Exists(sessionID) {
				sessionID = registry.NewID()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := logging.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSessionID(ctx context.Context) string {
	return logging.SessionID(ctx)
}
