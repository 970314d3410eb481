package database

import (
	"path/filepath"
	"runtime"
	"testing"

	"devtogether/internal/platform/config"
)

func migrationsDir(t *testing.T) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to locate test file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

func TestMigrate(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, migrationsDir(t)); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	// second run must be a no-op
	if err := Migrate(db, migrationsDir(t)); err != nil {
		t.Fatalf("Failed to re-run migrations: %v", err)
	}

	for _, table := range []string{"profiles", "notifications", "audit_logs"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("Expected table %s: %v", table, err)
		}
	}
}

func TestMigrate_MissingDir(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing directory")
	}
}
