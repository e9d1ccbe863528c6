package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dfryer1193/blogapi/blog/domain"
)

var _ domain.RebuildRepository = (*SQLiteRebuildRepository)(nil)

const defaultRunLimit = 20

// SQLiteRebuildRepository keeps the history of index rebuilds.
type SQLiteRebuildRepository struct {
	db *sql.DB
}

func NewRebuildRepository(db *sql.DB) *SQLiteRebuildRepository {
	return &SQLiteRebuildRepository{
		db: db,
	}
}

const upsertRunQuery = `
	INSERT INTO rebuild_runs (id, trigger_source, state, entry_count, error, started_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		state = excluded.state,
		entry_count = excluded.entry_count,
		error = excluded.error,
		completed_at = excluded.completed_at
`

// SaveRun inserts a run or records its latest state.
func (r *SQLiteRebuildRepository) SaveRun(ctx context.Context, run *domain.RebuildRun) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	if run.ID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}

	var completedAt any
	if !run.CompletedAt.IsZero() {
		completedAt = run.CompletedAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, upsertRunQuery,
		run.ID,
		run.Trigger,
		run.State.String(),
		run.EntryCount,
		run.Error,
		run.StartedAt.UTC(),
		completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save rebuild run: %w", err)
	}

	return nil
}

const getRunQuery = `
	SELECT id, trigger_source, state, entry_count, error, started_at, completed_at
	FROM rebuild_runs
	WHERE id = ?
`

func (r *SQLiteRebuildRepository) GetRun(ctx context.Context, id string) (*domain.RebuildRun, error) {
	if id == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}

	var row rebuildRunRow
	err := r.db.QueryRowContext(ctx, getRunQuery, id).Scan(row.fields()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rebuild run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rebuild run: %w", err)
	}

	return row.toDomain(), nil
}

const listRunsQuery = `
	SELECT id, trigger_source, state, entry_count, error, started_at, completed_at
	FROM rebuild_runs
	ORDER BY started_at DESC
	LIMIT ?
`

// ListRuns returns the most recent runs, newest first
func (r *SQLiteRebuildRepository) ListRuns(ctx context.Context, limit int) ([]*domain.RebuildRun, error) {
	if limit <= 0 {
		limit = defaultRunLimit
	}

	rows, err := r.db.QueryContext(ctx, listRunsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rebuild runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.RebuildRun, 0)
	for rows.Next() {
		var row rebuildRunRow
		if err := rows.Scan(row.fields()...); err != nil {
			return nil, fmt.Errorf("failed to scan rebuild run row: %w", err)
		}
		runs = append(runs, row.toDomain())
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rebuild run rows: %w", err)
	}

	return runs, nil
}

// rebuildRunRow scans a rebuild_runs row; completed_at is NULL while a run is in flight.
type rebuildRunRow struct {
	ID          string
	Trigger     string
	State       string
	EntryCount  int
	Error       string
	StartedAt   sql.NullTime
	CompletedAt sql.NullTime
}

func (rr *rebuildRunRow) fields() []any {
	return []any{
		&rr.ID,
		&rr.Trigger,
		&rr.State,
		&rr.EntryCount,
		&rr.Error,
		&rr.StartedAt,
		&rr.CompletedAt,
	}
}

func (rr *rebuildRunRow) toDomain() *domain.RebuildRun {
	run := &domain.RebuildRun{
		ID:         rr.ID,
		Trigger:    rr.Trigger,
		State:      domain.ParseIndexState(rr.State),
		EntryCount: rr.EntryCount,
		Error:      rr.Error,
	}

	if rr.StartedAt.Valid {
		run.StartedAt = rr.StartedAt.Time
	}
	if rr.CompletedAt.Valid {
		run.CompletedAt = rr.CompletedAt.Time
	}

	return run
}
