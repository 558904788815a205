package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cookbook/api/internal/domain/shared"
	"github.com/cookbook/api/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func TestBaseHandler_ParseID(t *testing.T) {
	tests := []struct {
		param string
		id    uint
		ok    bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.param, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Params = gin.Params{{Key: "id", Value: tt.param}}

			id, ok := h.ParseID(c)
			c.Writer.WriteHeaderNow()

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			if !tt.ok {
				assert.Equal(t, http.StatusNotFound, w.Code)
				assert.Empty(t, w.Body.String())
			}
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{
			name:   "validation",
			err:    shared.NewValidationError("cuisine_ids", `Invalid pk "9" - object does not exist.`),
			status: http.StatusBadRequest,
			body:   `{"cuisine_ids":["Invalid pk \"9\" - object does not exist."]}`,
		},
		{
			name:   "duplicate name",
			err:    shared.NewConflictError("name", "diet with this name already exists."),
			status: http.StatusBadRequest,
			body:   `{"name":["diet with this name already exists."]}`,
		},
		{
			name:   "not found has an empty body",
			err:    fmt.Errorf("load: %w", shared.ErrNotFound),
			status: http.StatusNotFound,
			body:   "",
		},
		{
			name:   "invalid state",
			err:    shared.NewDomainError("INVALID_STATE", "Recipe is gone"),
			status: http.StatusBadRequest,
			body:   `{"detail":["Recipe is gone"]}`,
		},
		{
			name:   "concurrency conflict",
			err:    shared.ErrConcurrencyConflict,
			status: http.StatusConflict,
			body:   `{"detail":["The resource was modified concurrently. Please retry."]}`,
		},
		{
			name:   "unknown domain code",
			err:    shared.NewDomainError("SOMETHING", "internal detail"),
			status: http.StatusInternalServerError,
			body:   `{"detail":["A server error occurred."]}`,
		},
		{
			name:   "plain error",
			err:    errors.New("connection refused"),
			status: http.StatusInternalServerError,
			body:   `{"detail":["A server error occurred."]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h.HandleError(c, tt.err)
			c.Writer.WriteHeaderNow()

			assert.Equal(t, tt.status, w.Code)
			if tt.body == "" {
				assert.Empty(t, w.Body.String())
			} else {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h.HandleError(c, nil)

	assert.False(t, c.Writer.Written())
}
