package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration represents a single database migration
type migration struct {
	version int
	name    string
	up      string
}

// migrations is the ordered list of all database migrations
var migrations = []migration{
	{
		version: 1,
		name:    "create_search_documents_table",
		up: `
			CREATE TABLE IF NOT EXISTS search_documents (
				key TEXT PRIMARY KEY,
				path TEXT NOT NULL,
				title TEXT NOT NULL,
				original_content TEXT NOT NULL,
				content TEXT NOT NULL,
				time INTEGER NOT NULL,
				published INTEGER NOT NULL DEFAULT 0,
				generation TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_search_documents_generation
			ON search_documents(generation);
		`,
	},
	{
		version: 2,
		name:    "create_search_documents_fts",
		up: `
			CREATE VIRTUAL TABLE IF NOT EXISTS search_documents_fts USING fts5(
				title, path, original_content, content,
				content='search_documents',
				content_rowid='rowid'
			);

			CREATE TRIGGER IF NOT EXISTS search_documents_ai AFTER INSERT ON search_documents BEGIN
				INSERT INTO search_documents_fts(rowid, title, path, original_content, content)
				VALUES (new.rowid, new.title, new.path, new.original_content, new.content);
			END;

			CREATE TRIGGER IF NOT EXISTS search_documents_ad AFTER DELETE ON search_documents BEGIN
				INSERT INTO search_documents_fts(search_documents_fts, rowid, title, path, original_content, content)
				VALUES ('delete', old.rowid, old.title, old.path, old.original_content, old.content);
			END;

			CREATE TRIGGER IF NOT EXISTS search_documents_au AFTER UPDATE ON search_documents BEGIN
				INSERT INTO search_documents_fts(search_documents_fts, rowid, title, path, original_content, content)
				VALUES ('delete', old.rowid, old.title, old.path, old.original_content, old.content);
				INSERT INTO search_documents_fts(rowid, title, path, original_content, content)
				VALUES (new.rowid, new.title, new.path, new.original_content, new.content);
			END;
		`,
	},
	{
		version: 3,
		name:    "create_rebuild_runs_table",
		up: `
			CREATE TABLE IF NOT EXISTS rebuild_runs (
				id TEXT PRIMARY KEY,
				trigger_source TEXT NOT NULL,
				state TEXT NOT NULL,
				entry_count INTEGER NOT NULL DEFAULT 0,
				error TEXT NOT NULL DEFAULT '',
				started_at TIMESTAMP NOT NULL,
				completed_at TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_rebuild_runs_started_at
			ON rebuild_runs(started_at DESC);
		`,
	},
}

// runMigrations executes all pending migrations, each in its own transaction
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	currentVersion := 0
	err = db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		if err := applyMigration(ctx, db, m); err != nil {
			return err
		}
	}

	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for migration %d: %w", m.version, err)
	}

	if _, err := tx.ExecContext(ctx, m.up); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d (%s): %w", m.version, m.name, err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.version,
		m.name,
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", m.version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.version, err)
	}

	return nil
}
