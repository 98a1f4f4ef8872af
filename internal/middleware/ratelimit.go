package middleware

import (
	"net/http"
	"sync"
	"time"

	"taskify/backend/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu          sync.Mutex
	clients     map[string]*clientLimiter
	limit       rate.Limit
	burst       int
	cleanupTTL  time.Duration
	lastCleanup time.Time
}

// RateLimit applies a per-client-IP token bucket. Stale client buckets are
// swept inline on the request path, never by a background goroutine.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	rl := &rateLimiter{
		clients:     make(map[string]*clientLimiter),
		limit:       rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		burst:       cfg.BurstSize,
		cleanupTTL:  cfg.CleanupInterval,
		lastCleanup: time.Now(),
	}

	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > rl.cleanupTTL {
		for ip, client := range rl.clients {
			if now.Sub(client.lastSeen) > rl.cleanupTTL {
				delete(rl.clients, ip)
			}
		}
		rl.lastCleanup = now
	}

	client, found := rl.clients[clientIP]
	if !found {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientIP] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}
