package middleware

import (
	"net/http"
	"time"

	"github.com/cloo-solutions/cravings/internal/api"
	"golang.org/x/time/rate"
)

// RateLimit applies a process-wide token bucket of perMinute requests.
// A non-positive rate disables limiting.
func RateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	perRequest := time.Minute / time.Duration(perMinute)
	if perRequest <= 0 {
		perRequest = time.Millisecond
	}
	limiter := rate.NewLimiter(rate.Every(perRequest), perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				api.Error(w, http.StatusTooManyRequests, "search rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
