package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool
	DBSystem        string        // "postgresql" or "sqlite"
	LogFullSQL      bool          // include query variables in spans, development only
	SlowQueryThresh time.Duration // default 200ms
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin plus callbacks that flag
// slow statements on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { annotateSlowQuery(tx, cfg.SlowQueryThresh) }

	cb := db.Callback()
	for _, reg := range []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("cookbook:before_create", before) },
		func() error { return cb.Create().After("gorm:create").Register("cookbook:after_create", after) },
		func() error { return cb.Query().Before("gorm:query").Register("cookbook:before_query", before) },
		func() error { return cb.Query().After("gorm:query").Register("cookbook:after_query", after) },
		func() error { return cb.Update().Before("gorm:update").Register("cookbook:before_update", before) },
		func() error { return cb.Update().After("gorm:update").Register("cookbook:after_update", after) },
		func() error { return cb.Delete().Before("gorm:delete").Register("cookbook:before_delete", before) },
		func() error { return cb.Delete().After("gorm:delete").Register("cookbook:after_delete", after) },
		func() error { return cb.Raw().Before("gorm:raw").Register("cookbook:before_raw", before) },
		func() error { return cb.Raw().After("gorm:raw").Register("cookbook:after_raw", after) },
	} {
		if err := reg(); err != nil {
			return err
		}
	}

	// Registered after the callbacks above so the slow-query check runs while
	// the statement span is still recording.
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		RecordError(span, tx.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(attribute.Bool("db.slow_query", true))
		span.AddEvent("slow_query", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", threshold.Milliseconds()),
		))
	}
}
