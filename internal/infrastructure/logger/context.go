package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext stores l as the logger of everything running under ctx
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or fallback when there is none.
// A span active in ctx adds trace_id and span_id so entries line up with traces.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	l, ok := ctx.Value(ctxKey{}).(*zap.Logger)
	if !ok || l == nil {
		l = fallback
	}
	if l == nil {
		l = zap.NewNop()
	}

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
