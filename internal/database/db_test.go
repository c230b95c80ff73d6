package database

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/bazaarhq/bazaar/internal/models"
)

func TestOpenSQLiteMemory(t *testing.T) {
	db := openTestDB(t)

	if err := db.Exec("SELECT 1").Error; err != nil {
		t.Fatalf("expected health query to succeed: %v", err)
	}
}

func TestOpenSQLiteFileAppliesPool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bazaar.sqlite")
	db, err := Open(Config{Driver: "sqlite", Path: path, MaxOpenConns: 3, ConnMaxLifetime: time.Minute})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected max open connections 3, got %d", got)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "oracle"}); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestAutoMigrateAndRepair(t *testing.T) {
	db := openTestDB(t)

	if err := AutoMigrateAndRepair(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty users table, got %d", count)
	}

	if err := AutoMigrateAndRepair(nil); err == nil {
		t.Fatal("expected error for nil handle")
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A private in-memory database per test keeps tables isolated.
	db, err := Open(Config{Driver: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	t.Cleanup(func() {
		_ = Close(db)
	})

	return db
}
