package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleDoc = `{"swagger":"2.0","info":{"title":"Cookbook API","version":"v1"},"paths":{"/health":{"get":{"tags":["system"]}}},"x-flag":"true"}`

func TestJSONToYAML(t *testing.T) {
	out, err := JSONToYAML([]byte(sampleDoc))
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "title: Cookbook API")
	assert.NotContains(t, text, "{", "block style only")
	assert.Less(t, strings.Index(text, "swagger"), strings.Index(text, "paths"), "key order is kept")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "2.0", decoded["swagger"])
	assert.Equal(t, "true", decoded["x-flag"])
}

func TestJSONToYAML_InvalidInput(t *testing.T) {
	_, err := JSONToYAML([]byte(`{"swagger": [`))
	assert.Error(t, err)
}

func TestOpenAPIHandler_YAML(t *testing.T) {
	serve := func(h *OpenAPIHandler) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/openapi.yaml", h.YAML)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
		return w
	}

	t.Run("exports the schema", func(t *testing.T) {
		w := serve(NewOpenAPIHandler(func() (string, error) { return sampleDoc, nil }))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/yaml")
		assert.Contains(t, w.Body.String(), "title: Cookbook API")
	})

	t.Run("missing schema is a server error", func(t *testing.T) {
		w := serve(NewOpenAPIHandler(func() (string, error) { return "", errors.New("no swag doc registered") }))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
