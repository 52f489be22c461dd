package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/tonghaoch/transaction-service-go/internal/api"
)

// RateLimiter enforces a minimum interval between requests.
type RateLimiter struct {
	limiter  *rate.Limiter
	interval time.Duration
	wait     bool
	maxWait  time.Duration
}

// NewRateLimiter creates a rate limiter with the given interval in seconds.
// If wait is true, requests will sleep instead of being rejected with 429,
// for at most maxWait (0 means until the request context ends). A request
// whose turn comes later than that is rejected right away.
// An interval of zero or less disables limiting.
func NewRateLimiter(seconds int, wait bool, maxWait time.Duration) *RateLimiter {
	interval := time.Duration(seconds) * time.Second
	rl := &RateLimiter{interval: interval, wait: wait, maxWait: maxWait}
	if interval > 0 {
		rl.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return rl
}

// Enabled reports whether the limiter restricts anything.
func (rl *RateLimiter) Enabled() bool {
	return rl.limiter != nil
}

// Middleware returns an HTTP middleware that enforces the rate limit.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if !rl.Enabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.wait {
			ctx := r.Context()
			if rl.maxWait > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, rl.maxWait)
				defer cancel()
			}
			// Wait fails fast when the slot lies past the deadline.
			if err := rl.limiter.Wait(ctx); err != nil {
				tooManyRequests(w, rl.interval)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		res := rl.limiter.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			tooManyRequests(w, delay)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", fmt.Sprint(seconds))
	api.WriteErrorMessage(w, http.StatusTooManyRequests, api.TypeRateLimit, "Rate limit exceeded")
}
