package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/cookbook/api/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perSecond sustained requests per client with the given burst.
// Clients idle for a minute are forgotten. Call Stop to end the cleanup goroutine.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		clients: make(map[string]*client),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idleTTL: time.Minute,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes a token for key
func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key).Allow()
}

// Remaining returns the whole tokens left for key
func (rl *RateLimiter) Remaining(key string) int {
	tokens := rl.get(key).Tokens()
	if tokens < 0 {
		return 0
	}
	return int(math.Floor(tokens))
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// Size returns the number of tracked clients
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = rl.now()
	return c.limiter
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.idleTTL)
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
}

// RateLimit throttles by client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string { return c.ClientIP() })
}

// RateLimitByKey throttles by a custom key. Throttled requests get 429 with a Retry-After.
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		if !limiter.Allow(key) {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(limiter.limit)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewDetail(dto.MsgThrottled))
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.burst))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.Remaining(key)))
		c.Next()
	}
}

func retryAfterSeconds(limit rate.Limit) int {
	if limit <= 0 {
		return 60
	}
	return max(1, int(math.Ceil(1/float64(limit))))
}
