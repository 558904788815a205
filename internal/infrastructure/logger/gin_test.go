package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(entries []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == msg {
			return &entries[i]
		}
	}
	return nil
}

func TestAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{name: "success logs info", status: http.StatusOK, wantLevel: zapcore.InfoLevel},
		{name: "not found logs warn", status: http.StatusNotFound, wantLevel: zapcore.WarnLevel},
		{name: "server error logs error", status: http.StatusInternalServerError, wantLevel: zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Set("request_id", "req-42")
				c.Next()
			})
			router.Use(AccessLog(zap.New(core)))
			router.GET("/recipes/:id/", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/recipes/1/?format=json", nil)
			router.ServeHTTP(w, req)

			entry := findEntry(recorded.All(), "HTTP Request")
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantLevel, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, "req-42", fields["request_id"])
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "format=json", fields["query"])
			assert.Equal(t, "/recipes/:id/", fields["route"])
		})
	}
}

func TestAccessLog_PropagatesLoggerToRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(AccessLog(zap.New(core)))
	router.GET("/cuisines/", func(c *gin.Context) {
		FromContext(c.Request.Context(), nil).Info("listing cuisines")
		assert.NotNil(t, Request(c))
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cuisines/", nil))

	entry := findEntry(recorded.All(), "listing cuisines")
	require.NotNil(t, entry)
	assert.Equal(t, "/cuisines/", entry.ContextMap()["path"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recover(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":["A server error occurred."]}`, w.Body.String())
	require.NotNil(t, findEntry(recorded.All(), "Panic recovered"))
}

func TestRequest_WithoutAccessLog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	assert.NotPanics(t, func() { Request(c).Info("dropped") })
}

func TestRecover_UsesRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	router := gin.New()
	router.Use(Recover(log), AccessLog(log))
	router.GET("/recipes/", func(c *gin.Context) {
		panic("nil map")
	})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/recipes/", nil))

	entry := findEntry(recorded.All(), "Panic recovered")
	require.NotNil(t, entry)
	assert.Equal(t, "/recipes/", entry.ContextMap()["path"])
	assert.Equal(t, "nil map", entry.ContextMap()["panic"])
}
