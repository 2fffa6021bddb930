package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/teamthreads/storefront/order/internal/throttle"
)

// deniedResponse is the 429 body.
type deniedResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	RetryAfter int64  `json:"retryAfter"`
}

// NewRateLimitMiddleware guards a route with the limiter. The standard
// rate-limit headers are emitted on every response, allowed or denied.
func NewRateLimitMiddleware(limiter *throttle.Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := throttle.ClientKey(r)
			decision := limiter.Admit(key)

			resetSeconds := (decision.ResetInMs + 999) / 1000

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetSeconds, 10))

			if !decision.Allowed {
				slog.Warn("Submission throttled",
					"client_key", key,
					"count", decision.CurrentCount,
					"reset_in_ms", decision.ResetInMs,
				)

				w.Header().Set("Retry-After", strconv.FormatInt(resetSeconds, 10))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				if err := json.NewEncoder(w).Encode(deniedResponse{
					Success:    false,
					Error:      "too many requests, slow down",
					RetryAfter: decision.ResetInMs,
				}); err != nil {
					slog.Error("Error sending throttle response", "error", err)
				}

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
