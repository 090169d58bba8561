package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = time.Hour
	limiterSweepInterval = 10 * time.Minute
)

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// sweepLimiters drops entries not seen since the cutoff, keeping the per-IP
// map bounded over the process lifetime.
func sweepLimiters(clients map[string]*clientLimiter, cutoff time.Time) {
	for ip, cl := range clients {
		if cl.seen.Before(cutoff) {
			delete(clients, ip)
		}
	}
}

// RateLimitMiddleware applies a per-client token bucket. Model calls are the
// expensive resource behind the analyze route, so each source IP gets its own
// bucket. Idle buckets are swept periodically.
func RateLimitMiddleware(limit rate.Limit, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	go func() {
		for range time.Tick(limiterSweepInterval) {
			mu.Lock()
			sweepLimiters(clients, time.Now().Add(-limiterIdleTTL))
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{lim: rate.NewLimiter(limit, burst)}
			clients[ip] = cl
		}
		cl.seen = time.Now()
		mu.Unlock()

		if !cl.lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
