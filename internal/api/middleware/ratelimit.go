package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/yatube/pkg/response"
)

// RateLimiter 按客户端 IP 限流
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*client
	idleTTL   time.Duration
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clients: make(map[string]*client),
		idleTTL: 10 * time.Minute,
	}
}

// Allow 同时清理长时间未出现的客户端
func (r *RateLimiter) Allow(key string) bool {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if now.Sub(r.lastSweep) > r.idleTTL {
		for k, cl := range r.clients {
			if now.Sub(cl.lastSeen) > r.idleTTL {
				delete(r.clients, k)
			}
		}
		r.lastSweep = now
	}

	cl, ok := r.clients[key]
	if !ok {
		cl = &client{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.clients[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// Middleware rps <= 0 时不限流
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if r.limit <= 0 || r.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		response.TooManyRequests(c)
	}
}
