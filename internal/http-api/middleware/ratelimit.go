package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Entries idle longer than this are dropped so the per-IP map cannot
// grow without bound under scans from many addresses.
const limiterIdleTimeout = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type clientLimiters struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	r         rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newClientLimiters(r rate.Limit, burst int) *clientLimiters {
	return &clientLimiters{
		clients: make(map[string]*clientLimiter),
		r:       r,
		burst:   burst,
		now:     time.Now,
	}
}

func (cl *clientLimiters) get(ip string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	if now.Sub(cl.lastSweep) >= limiterIdleTimeout {
		for addr, c := range cl.clients {
			if now.Sub(c.lastSeen) >= limiterIdleTimeout {
				delete(cl.clients, addr)
			}
		}
		cl.lastSweep = now
	}

	c, ok := cl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(cl.r, cl.burst)}
		cl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// RateLimit returns a per-client-IP limiter for the auth endpoints so
// a single client cannot hammer code generation or token issuance.
func RateLimit(r rate.Limit, burst int) gin.HandlerFunc {
	limiters := newClientLimiters(r, burst)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
