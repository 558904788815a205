// Package testutil holds helpers shared by the HTTP level tests: an in-memory
// store, JSON requests against a gin engine, a scripted PDF renderer and
// polling for asynchronous PDF jobs.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cookbook/api/internal/infrastructure/config"
	"github.com/cookbook/api/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewSQLiteDB opens a private in-memory SQLite database with the schema
// applied. Every test gets its own database.
func NewSQLiteDB(t *testing.T) *persistence.Database {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := persistence.NewDatabase(&config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8]),
	})
	require.NoError(t, err, "Failed to open sqlite database")
	require.NoError(t, db.AutoMigrate(), "Failed to migrate sqlite database")

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// waitFor polls condition until it holds or timeout passes
func waitFor(condition func() bool, timeout, interval time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return condition()
}

// AssertEventually retries condition until it passes or times out.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	if !waitFor(condition, timeout, interval) {
		t.Fatalf("Condition not met within %v: %v", timeout, msgAndArgs)
	}
}

// AssertNever verifies a condition never becomes true within the duration.
func AssertNever(t *testing.T, condition func() bool, duration, interval time.Duration, msgAndArgs ...any) {
	t.Helper()

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		if condition() {
			t.Fatalf("Condition unexpectedly became true: %v", msgAndArgs)
		}
		time.Sleep(interval)
	}
}
