package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AccessLog writes one entry per request, at warn for 4xx and error for 5xx.
// It also stores a logger tagged with the request id and route in the
// request context, so everything below the handler logs with those fields.
func AccessLog(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		req := c.Request

		log := base.With(
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		c.Request = req.WithContext(WithContext(req.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 8)
		fields = append(fields,
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
		if ua := req.UserAgent(); ua != "" {
			fields = append(fields, zap.String("user_agent", ua))
		}
		if req.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", req.URL.RawQuery))
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, zap.String("route", route))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		if ce := log.Check(statusLevel(status), "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func statusLevel(status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

// Recover turns a panic in a handler into the generic 500 body and logs the
// stack with the request logger when AccessLog already ran
func Recover(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				FromContext(c.Request.Context(), base).Error("Panic recovered",
					zap.Any("panic", p),
					zap.Stack("stacktrace"),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": []string{"A server error occurred."}})
			}
		}()
		c.Next()
	}
}

// Request returns the logger AccessLog stored for c, or a no-op logger
func Request(c *gin.Context) *zap.Logger {
	return FromContext(c.Request.Context(), nil)
}
