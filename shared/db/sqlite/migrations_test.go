package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func connectTestDB(t *testing.T, path string) *SQLiteDB {
	t.Helper()

	database := NewSQLiteDB(&SQLiteConfig{Path: path})
	if err := database.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return database
}

func countSchemaObjects(t *testing.T, db *sql.DB, kind, name string) int {
	t.Helper()

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", kind, name).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check %s %s: %v", kind, name, err)
	}
	return count
}

func TestRunMigrations(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	db := database.DB()

	objects := []struct {
		kind string
		name string
	}{
		{"table", "schema_migrations"},
		{"table", "search_documents"},
		{"table", "search_documents_fts"},
		{"table", "rebuild_runs"},
		{"index", "idx_search_documents_generation"},
		{"index", "idx_rebuild_runs_started_at"},
		{"trigger", "search_documents_ai"},
		{"trigger", "search_documents_ad"},
		{"trigger", "search_documents_au"},
	}

	for _, o := range objects {
		if got := countSchemaObjects(t, db, o.kind, o.name); got != 1 {
			t.Errorf("%s %s: count = %d, want 1", o.kind, o.name, got)
		}
	}

	var version int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("version = %d, want %d", version, len(migrations))
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database := connectTestDB(t, dbPath)
	database.Close()

	database = connectTestDB(t, dbPath)
	defer database.Close()

	var count int
	err := database.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema_migrations: %v", err)
	}
	if count != len(migrations) {
		t.Errorf("migrations recorded %d times, want %d", count, len(migrations))
	}
}

func TestSearchDocumentsFullTextTriggers(t *testing.T) {
	database := connectTestDB(t, filepath.Join(t.TempDir(), "test.db"))
	defer database.Close()

	db := database.DB()

	_, err := db.Exec(`
		INSERT INTO search_documents (key, path, title, original_content, content, time, published, generation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, "Alpha2024-1-1", "/a.html", "Alpha", "title=Alpha", "hello world", int64(1704067200000), 1, "g1")
	if err != nil {
		t.Fatalf("Failed to insert document: %v", err)
	}

	match := func(term string) int {
		var n int
		if err := db.QueryRow("SELECT COUNT(*) FROM search_documents_fts WHERE search_documents_fts MATCH ?", term).Scan(&n); err != nil {
			t.Fatalf("MATCH %q failed: %v", term, err)
		}
		return n
	}

	if got := match("hello"); got != 1 {
		t.Errorf("MATCH hello = %d, want 1", got)
	}

	if _, err := db.Exec("UPDATE search_documents SET content = ? WHERE key = ?", "goodbye", "Alpha2024-1-1"); err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}
	if got := match("hello"); got != 0 {
		t.Errorf("MATCH hello after update = %d, want 0", got)
	}

	if _, err := db.Exec("DELETE FROM search_documents WHERE key = ?", "Alpha2024-1-1"); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}
	if got := match("goodbye"); got != 0 {
		t.Errorf("MATCH goodbye after delete = %d, want 0", got)
	}
}
