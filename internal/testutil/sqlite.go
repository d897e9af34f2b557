// Package testutil opens throwaway SQLite databases for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"go-warehouse/internal/repository"
	"go-warehouse/pkg/database"

	"gorm.io/gorm"
)

// NewDB creates a migrated database file under t.TempDir and returns the
// interactive handle plus an opener for extra connections to the same file.
func NewDB(t testing.TB) (*gorm.DB, database.Opener) {
	t.Helper()

	cfg := database.Config{Path: filepath.Join(t.TempDir(), "warehouse.db")}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, database.NewOpener(cfg)
}
