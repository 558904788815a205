package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of application spans
const TracerName = "github.com/cookbook/api"

// Span attribute keys shared by the recipe services
const (
	SpanAttrRecipeID = "recipe.id"
	SpanAttrJobID    = "pdf.job_id"
	SpanAttrURL      = "pdf.url"
	SpanAttrKind     = "taxonomy.kind"
)

// StartSpan starts an internal span named {service}.{method} on the global tracer.
// keyValues are alternating string keys and values.
//
//	ctx, span := telemetry.StartSpan(ctx, "recipe", "create", telemetry.SpanAttrRecipeID, id)
//	defer span.End()
func StartSpan(ctx context.Context, service, method string, keyValues ...any) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(TracerName).Start(ctx,
		fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(toAttributes(keyValues)...),
	)
}

// SetAttributes adds alternating key/value attributes to span
func SetAttributes(span trace.Span, keyValues ...any) {
	span.SetAttributes(toAttributes(keyValues)...)
}

// RecordError records err on span and marks it failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetOK marks the span as successful.
func SetOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// TraceID returns the trace id of the span in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}

func toAttributes(keyValues []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, keyValues[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case uint:
		return attribute.Int64(key, int64(v))
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
