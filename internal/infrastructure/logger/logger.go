// Package logger builds the zap loggers used by the API, the PDF workers and
// the migration CLI, and carries request scoped loggers through contexts.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

const defaultTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Config describes where and how entries are written.
// The rotation fields only apply when Output is a file path.
type Config struct {
	Level      string
	Format     string
	Output     string
	TimeFormat string

	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Console is the colored stdout setup used by the CLI tools
func Console(level string) *Config {
	return &Config{Level: level, Format: FormatConsole, Output: "stdout", TimeFormat: "15:04:05.000"}
}

// New builds a logger with caller info and stack traces on errors
func New(cfg *Config) (*zap.Logger, error) {
	switch strings.ToLower(cfg.Format) {
	case "", FormatJSON, FormatConsole:
	default:
		return nil, fmt.Errorf("logger: unknown format %q", cfg.Format)
	}
	return zap.New(NewCore(cfg), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// NewCore returns the core behind New, so it can be teed with the OTLP log bridge
func NewCore(cfg *Config) zapcore.Core {
	return zapcore.NewCore(encoder(cfg), writer(cfg), ParseLevel(cfg.Level))
}

// ParseLevel accepts zap level names case-insensitively plus "warning".
// Anything unknown falls back to info.
func ParseLevel(level string) zapcore.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		return zapcore.WarnLevel
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Sync flushes buffered entries
func Sync(logger *zap.Logger) error {
	return logger.Sync()
}

func encoder(cfg *Config) zapcore.Encoder {
	layout := cfg.TimeFormat
	if layout == "" {
		layout = defaultTimeLayout
	}

	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(layout)
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if strings.EqualFold(cfg.Format, FormatConsole) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

// writer sends file output through lumberjack so a long running worker
// cannot fill the disk
func writer(cfg *Config) zapcore.WriteSyncer {
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout)
	case "stderr":
		return zapcore.Lock(os.Stderr)
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Output,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}
