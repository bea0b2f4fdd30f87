// ratelimit.go implements per-category rate limiting for the home venue's
// REST API using golang.org/x/time/rate, replacing a hand-rolled token
// bucket with the standard Go rate limiter.
//
// Three buckets are maintained:
//   - Order:  350 burst / 50 per sec
//   - Cancel: 300 burst / 30 per sec
//   - Book:   150 burst / 15 per sec
package exchange

import "golang.org/x/time/rate"

// RateLimiter groups rate.Limiters by home-venue API endpoint category.
// Each trading operation calls the appropriate limiter's Wait() before
// making the HTTP request.
type RateLimiter struct {
	Order  *rate.Limiter // POST /orders — placing new orders
	Cancel *rate.Limiter // DELETE /orders, /cancel-all
	Book   *rate.Limiter // GET /book — order book reads
}

// NewRateLimiter builds rate limiters tuned to the home venue's published
// limits. Burst is the 10-second burst allowance. Cancel and Book refill at
// a tenth of their burst per second for smooth admission rather than bursty
// 10s windows; Order refills faster, at 50 per second against a burst of 350.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		Order:  rate.NewLimiter(rate.Limit(50), 350),
		Cancel: rate.NewLimiter(rate.Limit(30), 300),
		Book:   rate.NewLimiter(rate.Limit(15), 150),
	}
}
