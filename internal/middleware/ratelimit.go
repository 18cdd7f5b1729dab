package middleware

import (
	"errors"
	"log"
	"net"
	"net/http"

	"github.com/molsimcloud/backend/internal/services"
)

// RateLimit throttles an endpoint per client IP for the given action name.
// RealIP middleware must run earlier so RemoteAddr reflects the caller.
func RateLimit(limiter *services.RateLimitService, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := "ip:" + clientIP(r)

			if err := limiter.CheckAndRecord(r.Context(), identifier, action); err != nil {
				if errors.Is(err, services.ErrRateLimitedMinute) || errors.Is(err, services.ErrRateLimitedHour) {
					w.Header().Set("Retry-After", "60")
					services.SendServiceError(w, err)
					return
				}
				log.Printf("[RATELIMIT] Check failed for %s on %s: %v", identifier, action, err)
				services.SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
