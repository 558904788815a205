// Package telemetry wires OpenTelemetry tracing, metrics and the zap log bridge.
// Every signal degrades to the global no-op implementation when disabled.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cookbook/api/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported as service.version on every exported signal
const ServiceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Providers holds the SDK providers Setup installed globally.
// A nil provider means that signal is not exported.
type Providers struct {
	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider
	logs    *sdklog.LoggerProvider
	log     *zap.Logger
}

// Setup creates the OTLP exporters enabled in cfg and installs their providers
// globally. All three share the collector endpoint and the service resource.
func Setup(ctx context.Context, cfg config.TelemetryConfig, log *zap.Logger) (*Providers, error) {
	p := &Providers{log: log}
	if !cfg.Enabled {
		log.Info("Telemetry disabled, using no-op providers")
		return p, nil
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	if p.traces, err = newTracerProvider(ctx, cfg, res); err != nil {
		return nil, err
	}
	otel.SetTracerProvider(p.traces)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.MetricsEnabled {
		if p.metrics, err = newMeterProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
		otel.SetMeterProvider(p.metrics)
	}

	if cfg.LogsEnabled {
		if p.logs, err = newLoggerProvider(ctx, cfg, res); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}

	log.Info("OpenTelemetry initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.Bool("metrics", p.MetricsEnabled()),
		zap.Bool("logs", p.LogsEnabled()),
	)
	return p, nil
}

// TracingEnabled reports whether spans are exported
func (p *Providers) TracingEnabled() bool { return p.traces != nil }

// MetricsEnabled reports whether measurements are exported
func (p *Providers) MetricsEnabled() bool { return p.metrics != nil }

// LogsEnabled reports whether log records are exported
func (p *Providers) LogsEnabled() bool { return p.logs != nil }

// Meter returns a named meter, from the global provider when metrics are off
func (p *Providers) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if p.metrics == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return p.metrics.Meter(name, opts...)
}

// Shutdown flushes every exporter, logs first so records about the shutdown
// of the others still leave the process
func (p *Providers) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if p.logs != nil {
		if err := p.logs.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logs: %w", err))
		}
	}
	if p.metrics != nil {
		if err := p.metrics.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics: %w", err))
		}
	}
	if p.traces != nil {
		if err := p.traces.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("traces: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	if p.TracingEnabled() {
		p.log.Info("OpenTelemetry shutdown complete")
	}
	return nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}
