package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit throttles all requests through one token bucket shared by every
// caller. A nil limiter disables throttling. Excess requests get 429.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := limiter.Reserve()
			if !res.OK() {
				tooManyRequests(w, time.Second)
				return
			}
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				tooManyRequests(w, delay)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewLimiter builds a limiter for perSecond requests with burst, or nil when
// perSecond is not positive.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	secs := int(math.Ceil(retryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
}
