package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "cookbook-api",
		Enabled:     true,
	}
}

// Tracing returns OpenTelemetry tracing middleware with default configuration.
func Tracing() gin.HandlerFunc {
	return TracingWithConfig(DefaultTracingConfig())
}

// TracingWithConfig returns the otelgin middleware. Spans are named
// "METHOD route", e.g. "GET /recipes/:id/".
func TracingWithConfig(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return otelgin.Middleware(cfg.ServiceName)
}

// SpanAttributes adds the request id to the span started by Tracing.
// It must run inside Tracing, so it is registered right after it.
func SpanAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID := GetRequestID(c); requestID != "" {
				span.SetAttributes(attribute.String("request_id", requestID))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker marks the span failed for 4xx responses and tags every
// error response with an error class. otelgin sets the status of 5xx spans
// itself and clears any description, so the class is kept as an attribute.
// Place it after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest {
			return
		}
		class := "Client Error"
		switch {
		case status >= http.StatusInternalServerError:
			class = "Internal Server Error"
		case status == http.StatusNotFound:
			class = "Not Found"
		case status == http.StatusConflict:
			class = "Conflict"
		case status == http.StatusTooManyRequests:
			class = "Throttled"
		}
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.String("http.error_class", class),
		)
		if status < http.StatusInternalServerError {
			span.SetStatus(codes.Error, class)
		}
	}
}
