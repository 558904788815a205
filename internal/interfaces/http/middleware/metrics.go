package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// HTTPMeterName is the instrumentation scope of the HTTP server metrics
const HTTPMeterName = "http.server"

// Attribute keys of the HTTP server metrics
var (
	AttrHTTPMethod     = attribute.Key("http.request.method")
	AttrHTTPRoute      = attribute.Key("http.route")
	AttrHTTPStatusCode = attribute.Key("http.response.status_code")
)

// HTTPDurationBuckets are the latency boundaries in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

type httpMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	responseSize    metric.Int64Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requestTotal, err := meter.Int64Counter("http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	requestDuration, err := meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency distribution in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(HTTPDurationBuckets...),
	)
	if err != nil {
		return nil, err
	}
	responseSize, err := meter.Int64Histogram("http_server_response_size_bytes",
		metric.WithDescription("HTTP response body size distribution in bytes"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(100, 1000, 10000, 100000, 1000000, 10000000),
	)
	if err != nil {
		return nil, err
	}
	activeRequests, err := meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("Number of currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	return &httpMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		responseSize:    responseSize,
		activeRequests:  activeRequests,
	}, nil
}

// HTTPMetrics counts requests and records their latency and response size per route.
// Routes are gin's patterns so ids do not inflate cardinality.
// When the instruments cannot be created the middleware is a no-op.
func HTTPMetrics(meter metric.Meter, logger *zap.Logger) gin.HandlerFunc {
	metrics, err := newHTTPMetrics(meter)
	if err != nil {
		if logger != nil {
			logger.Warn("HTTP metrics disabled", zap.Error(err))
		}
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		metrics.activeRequests.Add(ctx, 1)
		c.Next()
		metrics.activeRequests.Add(ctx, -1)

		method := AttrHTTPMethod.String(c.Request.Method)
		route := AttrHTTPRoute.String(routePattern(c))
		base := metric.WithAttributes(method, route)
		metrics.requestTotal.Add(ctx, 1, metric.WithAttributes(method, route, AttrHTTPStatusCode.Int(c.Writer.Status())))
		metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), base)
		if size := c.Writer.Size(); size > 0 {
			metrics.responseSize.Record(ctx, int64(size), base)
		}
	}
}

func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unknown"
}
