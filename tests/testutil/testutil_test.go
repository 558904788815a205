package testutil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cookbook/api/internal/infrastructure/printing"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSQLiteDB_IsolatedPerTest(t *testing.T) {
	a := NewSQLiteDB(t)
	require.NoError(t, a.DB.Exec("INSERT INTO cuisines (name, created_at, updated_at) VALUES ('Thai', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)").Error)

	t.Run("other test", func(t *testing.T) {
		b := NewSQLiteDB(t)
		var count int64
		require.NoError(t, b.DB.Table("cuisines").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestAssertEventually(t *testing.T) {
	start := time.Now()
	AssertEventually(t, func() bool { return time.Since(start) > 10*time.Millisecond }, time.Second, time.Millisecond)
}

func TestAssertNever(t *testing.T) {
	AssertNever(t, func() bool { return false }, 20*time.Millisecond, 5*time.Millisecond)
}

func echoEngine() *gin.Engine {
	r := gin.New()
	r.POST("/echo/", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"name": []string{"This field is required."}})
			return
		}
		body["header"] = c.GetHeader("X-Test")
		c.JSON(http.StatusCreated, body)
	})
	r.GET("/missing/", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": []string{"Not found."}})
	})
	return r
}

func TestRunHTTPTestCases(t *testing.T) {
	RunHTTPTestCases(t, echoEngine(), []HTTPTestCase{
		{
			Name:           "echoes body and header",
			Method:         http.MethodPost,
			Path:           "/echo/",
			Body:           map[string]any{"name": "Pho"},
			Headers:        map[string]string{"X-Test": "yes"},
			ExpectedStatus: http.StatusCreated,
			ExpectedBody:   map[string]any{"name": "Pho", "header": "yes"},
		},
		{
			Name:           "default method is GET",
			Path:           "/missing/",
			ExpectedStatus: http.StatusNotFound,
			Validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				AssertDetail(t, w, http.StatusNotFound, "Not found.")
			},
		},
	})
}

func TestAssertFieldError(t *testing.T) {
	w := DoJSON(t, echoEngine(), http.MethodPost, "/echo/", "{not json")
	AssertFieldError(t, w, "name", "This field is required.")
}

func TestStubRenderer(t *testing.T) {
	r := NewStubRenderer()
	ctx := context.Background()

	res, err := r.Render(ctx, &printing.RenderRequest{URL: "http://a"})
	require.NoError(t, err)
	assert.NoError(t, printing.ValidatePDF(res.PDFData))

	r.Fail("http://b")
	_, err = r.Render(ctx, &printing.RenderRequest{URL: "http://b"})
	assert.Error(t, err)

	r.Block("http://c")
	cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = r.Render(cctx, &printing.RenderRequest{URL: "http://c"})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	done := make(chan error, 1)
	go func() {
		_, err := r.Render(ctx, &printing.RenderRequest{URL: "http://c"})
		done <- err
	}()
	AssertEventually(t, func() bool { return r.CallCount("http://c") == 2 }, time.Second, time.Millisecond)
	r.Unblock("http://c")
	assert.NoError(t, <-done)

	assert.Equal(t, []string{"http://a", "http://b", "http://c", "http://c"}, r.Calls())
}
