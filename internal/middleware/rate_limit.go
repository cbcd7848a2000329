package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"campaignhub/internal/pkg/response"
)

const limiterIdleTTL = 3 * time.Minute

type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	r       rate.Limit
	b       int
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*client),
		r:       r,
		b:       b,
	}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := time.Now()
	if c, ok := i.clients[ip]; ok {
		c.lastSeen = now
		return c.limiter
	}

	limiter := rate.NewLimiter(i.r, i.b)
	i.clients[ip] = &client{limiter: limiter, lastSeen: now}
	return limiter
}

// Cleanup drops limiters idle for longer than limiterIdleTTL.
func (i *IPRateLimiter) Cleanup() {
	i.mu.Lock()
	defer i.mu.Unlock()

	for ip, c := range i.clients {
		if time.Since(c.lastSeen) > limiterIdleTTL {
			delete(i.clients, ip)
		}
	}
}

// Run cleans up idle limiters every minute until done is closed.
func (i *IPRateLimiter) Run(done <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			i.Cleanup()
		}
	}
}

func (i *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !i.getLimiter(c.ClientIP()).Allow() {
			response.AbortError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
