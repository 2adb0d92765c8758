// Package testdb gives tests a private, migrated in-memory database.
package testdb

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/speeddate-dev/speeddate/db"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var counter atomic.Uint64

// Open points db.DB at a fresh sqlite database for the duration of t.
// A single connection is used, so code under test must use the tx handle
// inside transactions.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:speeddate_test_%d?mode=memory&cache=shared&_foreign_keys=1", counter.Add(1))

	conn, err := db.Open("sqlite", dsn, logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	previous := db.DB
	db.DB = conn

	if err := db.MigrateDatabase(); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.DB = previous
		_ = sqlDB.Close()
	})

	return conn
}
