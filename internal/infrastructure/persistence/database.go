package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cookbook/api/internal/infrastructure/config"
	"github.com/cookbook/api/internal/infrastructure/persistence/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB     *gorm.DB
	driver string
}

// Option configures how the database connection is opened
type Option func(*gorm.Config)

// WithLogger sets the GORM logger (usually logger.NewGormLogger)
func WithLogger(l gormlogger.Interface) Option {
	return func(c *gorm.Config) {
		c.Logger = l
	}
}

// NewDatabase opens the configured database (PostgreSQL or SQLite), applies pool
// settings and verifies the connection.
func NewDatabase(cfg *config.DatabaseConfig, opts ...Option) (*Database, error) {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// SQLite allows a single writer; one connection avoids "database is locked"
		// between the request path and the PDF workers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
		sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, driver: cfg.Driver}, nil
}

// NewDatabaseFromGorm wraps an already opened connection (tests, integration suites)
func NewDatabaseFromGorm(db *gorm.DB) *Database {
	return &Database{DB: db, driver: db.Dialector.Name()}
}

func openDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		path := cfg.SQLitePath
		if path != ":memory:" && !strings.HasPrefix(path, "file:") {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
				}
			}
		}
		return sqlite.Open(path + sqlitePragmas(path)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

func sqlitePragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return sep + "_foreign_keys=on&_busy_timeout=5000"
}

// AutoMigrate creates or updates all tables from the GORM models.
// Used for SQLite; PostgreSQL deployments run the SQL migrations instead.
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

// Driver returns the dialect name ("postgres" or "sqlite")
func (d *Database) Driver() string {
	return d.driver
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// isUniqueViolation reports whether err is a unique constraint failure.
// TranslateError covers both drivers; the string checks cover connections
// opened without it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value")
}

// isForeignKeyViolation reports whether err is a foreign key failure, as raised
// when a linked row is deleted by a concurrent request
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23503") ||
		strings.Contains(msg, "violates foreign key constraint")
}
