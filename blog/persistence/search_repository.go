package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/dfryer1193/blogapi/shared/db"
)

var _ domain.SearchEngine = (*SQLiteSearchRepository)(nil)

// SQLiteSearchRepository implements domain.SearchEngine on an SQLite FTS5 table.
type SQLiteSearchRepository struct {
	db *sql.DB
}

// NewSearchRepository creates a new SQLiteSearchRepository from a standard sql.DB
func NewSearchRepository(db *sql.DB) *SQLiteSearchRepository {
	return &SQLiteSearchRepository{
		db: db,
	}
}

const upsertDocumentQuery = `
	INSERT INTO search_documents (key, path, title, original_content, content, time, published, generation)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		path = excluded.path,
		title = excluded.title,
		original_content = excluded.original_content,
		content = excluded.content,
		time = excluded.time,
		published = excluded.published,
		generation = excluded.generation
`

const retireDocumentsQuery = `
	DELETE FROM search_documents WHERE generation <> ?
`

// Upsert writes the whole batch in one transaction. Documents from earlier
// generations are deleted, so a renamed or re-dated post leaves nothing behind.
func (r *SQLiteSearchRepository) Upsert(ctx context.Context, generation string, docs []domain.SearchDocument) error {
	if generation == "" {
		return fmt.Errorf("generation cannot be empty")
	}

	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		for _, doc := range docs {
			if doc.Key == "" {
				return fmt.Errorf("search document for %s has no key", doc.Path)
			}

			_, err := executor.ExecContext(txCtx, upsertDocumentQuery,
				doc.Key,
				doc.Path,
				doc.Title,
				doc.OriginalContent,
				doc.Content,
				doc.Time,
				doc.Published,
				generation,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert search document %s: %w", doc.Key, err)
			}
		}

		if _, err := executor.ExecContext(txCtx, retireDocumentsQuery, generation); err != nil {
			return fmt.Errorf("failed to retire stale search documents: %w", err)
		}

		return nil
	})
}

const queryDocumentsQuery = `
	SELECT d.path
	FROM search_documents_fts f
	JOIN search_documents d ON d.rowid = f.rowid
	WHERE search_documents_fts MATCH ?
		AND d.published = 1
	ORDER BY f.rank
	LIMIT ?
`

// Query returns matching paths in relevance order. Free text is reduced to
// quoted prefix terms so user input can never be read as FTS5 syntax.
// Drafts stay indexed but are never returned.
func (r *SQLiteSearchRepository) Query(ctx context.Context, text string, maxResults int) ([]string, error) {
	match := sanitizeQuery(text)
	if match == "" || maxResults <= 0 {
		return []string{}, nil
	}

	rows, err := r.db.QueryContext(ctx, queryDocumentsQuery, match, maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to query search documents: %w", err)
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		paths = append(paths, path)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return paths, nil
}

func sanitizeQuery(q string) string {
	var b strings.Builder
	for _, r := range q {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}

	terms := make([]string, 0)
	for _, t := range strings.Fields(b.String()) {
		switch strings.ToUpper(t) {
		case "AND", "OR", "NOT", "NEAR":
			continue
		}
		terms = append(terms, `"`+t+`"*`)
	}

	return strings.Join(terms, " ")
}
