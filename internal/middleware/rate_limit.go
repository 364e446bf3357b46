// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// staleAfter is how long an idle client keeps its token bucket.
const staleAfter = 3 * time.Minute

// ipLimiter hands out one token bucket per client address and drops buckets
// for clients that have gone quiet.
type ipLimiter struct {
	mtx     sync.Mutex
	buckets map[string]*clientBucket
	limit   rate.Limit
	burst   int
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit rejects clients that exceed the sustained rate beyond the burst
// allowance. Each call owns independent state, so route groups can carry
// different tiers.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	l := &ipLimiter{
		buckets: make(map[string]*clientBucket),
		limit:   limit,
		burst:   burst,
	}
	go l.sweep()

	return func(c *gin.Context) {
		if !l.bucketFor(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *ipLimiter) bucketFor(ip string) *rate.Limiter {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	b, ok := l.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.limiter
}

func (l *ipLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mtx.Lock()
		for ip, b := range l.buckets {
			if time.Since(b.lastSeen) > staleAfter {
				delete(l.buckets, ip)
			}
		}
		l.mtx.Unlock()
	}
}
