package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the cookbook meters
const MeterName = "github.com/cookbook/api"

// Job outcomes recorded on cookbook.pdf.jobs
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeCancelled  = "cancelled"
	OutcomeSuperseded = "superseded"
)

// AttrOutcome labels a job measurement with its outcome
var AttrOutcome = attribute.Key("outcome")

// QueueStats reports the scheduler's current load
type QueueStats func() (queued, running int)

// PDFMetrics records the PDF attachment job metrics.
type PDFMetrics struct {
	jobs           metric.Int64Counter
	renderDuration metric.Float64Histogram
}

// NewPDFMetrics creates the job instruments on meter. A nil meter uses the global provider.
// When stats is set, queue depth and running jobs are observed on each collection.
func NewPDFMetrics(meter metric.Meter, stats QueueStats) (*PDFMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(MeterName)
	}

	jobs, err := meter.Int64Counter("cookbook.pdf.jobs",
		metric.WithDescription("PDF attachment jobs by outcome"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter cookbook.pdf.jobs: %w", err)
	}

	renderDuration, err := meter.Float64Histogram("cookbook.pdf.render.duration",
		metric.WithDescription("Time spent rendering a recipe URL to PDF"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(RenderDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram cookbook.pdf.render.duration: %w", err)
	}

	if stats != nil {
		queued, err := meter.Int64ObservableGauge("cookbook.pdf.queue.depth",
			metric.WithDescription("PDF jobs waiting for a worker"),
			metric.WithUnit("{job}"))
		if err != nil {
			return nil, fmt.Errorf("failed to create gauge cookbook.pdf.queue.depth: %w", err)
		}
		running, err := meter.Int64ObservableGauge("cookbook.pdf.jobs.running",
			metric.WithDescription("PDF jobs currently rendering"),
			metric.WithUnit("{job}"))
		if err != nil {
			return nil, fmt.Errorf("failed to create gauge cookbook.pdf.jobs.running: %w", err)
		}
		_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			q, r := stats()
			o.ObserveInt64(queued, int64(q))
			o.ObserveInt64(running, int64(r))
			return nil
		}, queued, running)
		if err != nil {
			return nil, fmt.Errorf("failed to register queue callback: %w", err)
		}
	}

	return &PDFMetrics{jobs: jobs, renderDuration: renderDuration}, nil
}

// RecordJob counts one finished job. Safe on a nil receiver.
func (m *PDFMetrics) RecordJob(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.jobs.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordRender records how long a render took and whether it produced a PDF. Safe on a nil receiver.
func (m *PDFMetrics) RecordRender(ctx context.Context, d time.Duration, ok bool) {
	if m == nil {
		return
	}
	m.renderDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.Bool("success", ok)))
}
