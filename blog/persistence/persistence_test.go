package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/blogapi/shared/db/sqlite"
)

// setupTestDB opens a migrated database in a temporary directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: filepath.Join(t.TempDir(), "test.db")})
	if err := database.Connect(context.Background()); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database.DB()
}
