package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
}

// DefaultRateLimitConfig returns production-ready rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
	}
}

const (
	sweepInterval = time.Minute
	clientTTL     = 10 * time.Minute
)

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateClients tracks per-IP limiters. Eviction happens inline on the request
// path, at most once per sweepInterval, so no background goroutine is needed.
type rateClients struct {
	mu        sync.Mutex
	clients   map[string]*rateClient
	lastSweep time.Time
	limit     rate.Limit
	burst     int
}

func newRateClients(cfg RateLimitConfig) *rateClients {
	return &rateClients{
		clients:   make(map[string]*rateClient),
		lastSweep: time.Now(),
		limit:     rate.Limit(cfg.RequestsPerSecond),
		burst:     cfg.Burst,
	}
}

func (rc *rateClients) get(ip string, now time.Time) *rate.Limiter {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if now.Sub(rc.lastSweep) > sweepInterval {
		for key, cl := range rc.clients {
			if now.Sub(cl.lastSeen) > clientTTL {
				delete(rc.clients, key)
			}
		}
		rc.lastSweep = now
	}

	cl, exists := rc.clients[ip]
	if !exists {
		cl = &rateClient{limiter: rate.NewLimiter(rc.limit, rc.burst)}
		rc.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (rc *rateClients) len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.clients)
}

// RateLimit creates a per-IP rate limiting middleware. Idle clients are
// evicted after clientTTL so the map cannot grow without bound.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	clients := newRateClients(cfg)

	return func(c *gin.Context) {
		limiter := clients.get(c.ClientIP(), time.Now())

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
