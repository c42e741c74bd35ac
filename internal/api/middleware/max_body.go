package middleware

import (
	"net/http"
	"strings"

	"github.com/cloo-solutions/cravings/internal/api"
)

// MaxBodyBytes caps request bodies at limit bytes. Oversized requests with a
// known length are rejected up front; the rest fail when the handler reads
// past the cap. Form posts from the page get a plain-text error.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				if isFormPost(r) {
					http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				api.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func isFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}
