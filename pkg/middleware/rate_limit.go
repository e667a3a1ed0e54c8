package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig allows Requests per Window from a single client IP
type RateLimiterConfig struct {
	Requests        int
	Window          time.Duration
	CleanupInterval time.Duration
	TTL             time.Duration
}

type visitors struct {
	mu    sync.Mutex
	m     map[string]*visitor
	limit rate.Limit
	burst int
}

func (v *visitors) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, exists := v.m[ip]
	if !exists {
		limiter := rate.NewLimiter(v.limit, v.burst)
		v.m[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	vis.lastSeen = time.Now()
	return vis.limiter
}

func (v *visitors) cleanup(ctx context.Context, ttl, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		v.mu.Lock()
		for ip, vis := range v.m {
			if time.Since(vis.lastSeen) > ttl {
				delete(v.m, ip)
			}
		}
		v.mu.Unlock()
	}
}

// RateLimiterMiddleware gives every client a token bucket that holds a whole
// window worth of requests and refills at Requests/Window. Forgotten clients
// are dropped once ctx is done.
func RateLimiterMiddleware(ctx context.Context, config RateLimiterConfig) gin.HandlerFunc {
	if config.Requests <= 0 {
		config.Requests = 200
	}
	if config.Window <= 0 {
		config.Window = 15 * time.Minute
	}
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = config.Window
	}

	v := &visitors{
		m:     make(map[string]*visitor),
		limit: rate.Limit(float64(config.Requests) / config.Window.Seconds()),
		burst: config.Requests,
	}

	go v.cleanup(ctx, config.TTL, config.CleanupInterval)

	retryAfter := strconv.Itoa(int(math.Ceil(config.Window.Seconds() / float64(config.Requests))))

	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many requests",
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}
