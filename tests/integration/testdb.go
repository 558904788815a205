// Package integration runs the cookbook API against a real PostgreSQL started
// with testcontainers and migrated with the SQL migrations.
//
// One container serves the whole package. Every test gets its own database
// inside it, so tests never see each other's rows.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cookbook/api/internal/infrastructure/config"
	"github.com/cookbook/api/internal/infrastructure/migration"
	"github.com/cookbook/api/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

const (
	postgresImage = "postgres:16-alpine"
	adminDatabase = "postgres"
	adminUser     = "postgres"
	adminPassword = "cookbook"
)

// server is the package-wide container, started by the first test that needs it
var server struct {
	once      sync.Once
	container *tcpostgres.PostgresContainer
	host      string
	port      int
	err       error
}

// TestDB is a freshly migrated database owned by one test
type TestDB struct {
	*persistence.Database
	Config config.DatabaseConfig
	t      *testing.T
}

// NewTestDB creates and migrates a new database for t. It is dropped when t ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	startServer(ctx)
	require.NoError(t, server.err, "failed to start PostgreSQL container")

	cfg := serverConfig(adminDatabase)
	admin, err := persistence.NewDatabase(&cfg)
	require.NoError(t, err)
	defer func() { _ = admin.Close() }()

	name := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	require.NoError(t, admin.DB.Exec("CREATE DATABASE "+name).Error)

	tdb := &TestDB{Config: serverConfig(name), t: t}
	migrate(t, &tdb.Config)

	tdb.Database, err = persistence.NewDatabase(&tdb.Config, persistence.WithLogger(gormLogger()))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = tdb.Close()
		if admin, err := persistence.NewDatabase(&cfg); err == nil {
			if err := admin.DB.Exec("DROP DATABASE IF EXISTS " + name + " WITH (FORCE)").Error; err != nil {
				t.Logf("failed to drop %s: %v", name, err)
			}
			_ = admin.Close()
		}
	})
	return tdb
}

// CleanTables empties every table except the migration bookkeeping
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	require.NoError(tdb.t, tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename <> 'schema_migrations'
	`).Scan(&tables).Error)
	if len(tables) == 0 {
		return
	}
	require.NoError(tdb.t, tdb.DB.Exec("TRUNCATE TABLE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE").Error)
}

// TerminateContainer stops the package container. Call it from TestMain.
func TerminateContainer() {
	if server.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = server.container.Terminate(ctx)
}

func startServer(ctx context.Context) {
	server.once.Do(func() {
		c, err := tcpostgres.Run(ctx, postgresImage,
			tcpostgres.WithDatabase(adminDatabase),
			tcpostgres.WithUsername(adminUser),
			tcpostgres.WithPassword(adminPassword),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			server.err = err
			return
		}
		server.container = c

		host, err := c.Host(ctx)
		if err != nil {
			server.err = err
			return
		}
		port, err := c.MappedPort(ctx, "5432/tcp")
		if err != nil {
			server.err = err
			return
		}
		server.host, server.port = host, port.Int()
	})
}

func serverConfig(dbName string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            server.host,
		Port:            server.port,
		User:            adminUser,
		Password:        adminPassword,
		DBName:          dbName,
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5,
	}
}

func migrate(t *testing.T, cfg *config.DatabaseConfig) {
	t.Helper()

	dir := migrationsDir()
	require.NotEmpty(t, dir, "migrations directory not found")

	m, err := migration.Open(cfg, dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	require.NoError(t, m.Up())
}

// gormLogger is silent unless TEST_DB_DEBUG is set
func gormLogger() gormlogger.Interface {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return gormlogger.Default.LogMode(gormlogger.Info)
	}
	return gormlogger.Default.LogMode(gormlogger.Silent)
}

// migrationsDir walks up from this file to the module root
func migrationsDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}
