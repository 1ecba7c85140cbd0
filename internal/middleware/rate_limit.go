package middleware

import (
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/toyz/receitas/pkg/axon"
)

// RateLimiter applies one token bucket to every request
type RateLimiter struct {
	limiter *rate.Limiter
	limit   float64
	burst   int
	metrics *Metrics
}

// NewRateLimiter creates the limiter. rps <= 0 disables limiting. metrics may be nil.
func NewRateLimiter(rps float64, burst int, metrics *Metrics) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		limit:   rps,
		burst:   burst,
		metrics: metrics,
	}
}

// Handle implements axon.MiddlewareFunc
func (m *RateLimiter) Handle(next axon.HandlerFunc) axon.HandlerFunc {
	return func(c axon.RequestContext) error {
		if !m.limiter.Allow() {
			if m.metrics != nil {
				m.metrics.rateLimitRejects.Inc()
			}
			c.Response().SetHeader("Retry-After", "1")
			return axon.ErrTooManyRequests("")
		}

		if m.limit > 0 {
			c.Response().SetHeader("X-RateLimit-Limit", strconv.Itoa(int(m.limit)))
			c.Response().SetHeader("X-RateLimit-Remaining", strconv.Itoa(int(m.limiter.Tokens())))
			c.Response().SetHeader("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(time.Second).Unix(), 10))
		}
		return next(c)
	}
}
