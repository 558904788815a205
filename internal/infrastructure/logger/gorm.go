package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger routes GORM output to zap. Statements run under a request or a
// PDF job are logged with that context's logger, so they carry its request_id
// or recipe_id and job_id.
type GormLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	logNotFound   bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged as slow. Zero disables it.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slowThreshold = threshold }
}

// WithIgnoreRecordNotFoundError controls whether gorm.ErrRecordNotFound is logged.
// It is ignored by default since every 404 produces one.
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) { l.logNotFound = !ignore }
}

// NewGormLogger creates a GORM logger at level
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	if base == nil {
		base = zap.NewNop()
	}
	l := &GormLogger{base: base, level: level, slowThreshold: defaultSlowThreshold}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, level gormlogger.LogLevel, msg string, data []any) {
	if l.level < level {
		return
	}
	log := l.logger(ctx).Sugar()
	switch level {
	case gormlogger.Error:
		log.Errorf(msg, data...)
	case gormlogger.Warn:
		log.Warnf(msg, data...)
	default:
		log.Infof(msg, data...)
	}
}

// Trace logs a finished statement: failures at error, slow ones at warn and
// the rest at debug, each only when the configured level admits it
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && (l.logNotFound || !errors.Is(err, gormlogger.ErrRecordNotFound))
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	switch {
	case failed && l.level >= gormlogger.Error:
		l.logger(ctx).Error("SQL Error", append(statementFields(elapsed, fc), zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.logger(ctx).Warn(fmt.Sprintf("SLOW SQL >= %v", l.slowThreshold), statementFields(elapsed, fc)...)
	case !failed && err == nil && l.level >= gormlogger.Info:
		l.logger(ctx).Debug("SQL Query", statementFields(elapsed, fc)...)
	}
}

func (l *GormLogger) logger(ctx context.Context) *zap.Logger {
	return FromContext(ctx, l.base).Named("gorm")
}

func statementFields(elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	return []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
}

// MapGormLogLevel maps a zap level name to the GORM log level.
// Statements are only logged individually at debug.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
