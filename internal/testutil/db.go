// Package testutil provides isolated databases for package tests.
package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"stone_sales/internal/migrations"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory SQLite database private to t. The pool is
// pinned to one connection so the in-memory database outlives every query.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	return open(t, "file:"+name+"?mode=memory&cache=shared", 1)
}

// NewConcurrentDB returns a migrated file-backed SQLite database that serves
// several connections at once. Writers wait on each other through the busy
// timeout, so statements issued from different goroutines really overlap.
func NewConcurrentDB(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "stone_sales.db")
	return open(t, path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", 8)
}

func open(t testing.TB, dsn string, maxConns int) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrations.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
