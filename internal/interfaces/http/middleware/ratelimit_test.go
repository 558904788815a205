package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows the burst then blocks", func(t *testing.T) {
		limiter := NewRateLimiter(0.001, 3)
		defer limiter.Stop()

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client1"), "request %d should be allowed", i+1)
		}
		assert.False(t, limiter.Allow("client1"))
	})

	t.Run("separate buckets per client", func(t *testing.T) {
		limiter := NewRateLimiter(0.001, 2)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("clientA"))
		assert.True(t, limiter.Allow("clientA"))
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("refills over time", func(t *testing.T) {
		limiter := NewRateLimiter(50, 1)
		defer limiter.Stop()

		assert.True(t, limiter.Allow("client3"))
		assert.False(t, limiter.Allow("client3"))
		assert.Eventually(t, func() bool { return limiter.Allow("client3") }, time.Second, 10*time.Millisecond)
	})

	t.Run("remaining", func(t *testing.T) {
		limiter := NewRateLimiter(0.001, 5)
		defer limiter.Stop()

		assert.Equal(t, 5, limiter.Remaining("newclient"))
		limiter.Allow("newclient")
		limiter.Allow("newclient")
		assert.Equal(t, 3, limiter.Remaining("newclient"))
	})

	t.Run("concurrent access", func(t *testing.T) {
		limiter := NewRateLimiter(0.001, 100)
		defer limiter.Stop()

		var allowed atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("concurrent") {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(100), allowed.Load())
	})

	t.Run("idle clients are forgotten", func(t *testing.T) {
		limiter := NewRateLimiter(1, 1)
		defer limiter.Stop()

		now := time.Now()
		limiter.now = func() time.Time { return now }
		limiter.Allow("idle")
		require.Equal(t, 1, limiter.Size())

		now = now.Add(2 * time.Minute)
		limiter.cleanup()
		assert.Zero(t, limiter.Size())
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(0.001, 2)
	defer limiter.Stop()

	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/recipes/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/recipes/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	w := do()
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do().Code)

	w = do()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"detail":["Request was throttled."]}`, w.Body.String())
}
