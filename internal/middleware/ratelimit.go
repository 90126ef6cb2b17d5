package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Rahmadjon0038/avto-test-backend/internal/response"
)

type tokenBucket struct {
	tokens   float64
	lastSeen time.Time
}

// ipRateLimiter is a per-client-IP token bucket. Buckets idle longer than
// the cleanup window are dropped to keep the map bounded.
type ipRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	rate    float64 // tokens per second
	burst   float64
}

func newIPRateLimiter(rate float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		buckets: make(map[string]*tokenBucket),
		rate:    rate,
		burst:   float64(burst),
	}
}

func (l *ipRateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		if len(l.buckets) > 10_000 {
			l.cleanupLocked(now)
		}
		b = &tokenBucket{tokens: l.burst}
		l.buckets[ip] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * l.rate
		if b.tokens > l.burst {
			b.tokens = l.burst
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *ipRateLimiter) cleanupLocked(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.lastSeen) > 10*time.Minute {
			delete(l.buckets, ip)
		}
	}
}

// RateLimit throttles requests per client IP with a token bucket of the
// given sustained rate and burst size.
func RateLimit(rate float64, burst int) gin.HandlerFunc {
	limiter := newIPRateLimiter(rate, burst)
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP(), time.Now()) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}
