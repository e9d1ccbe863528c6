package application

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
)

const testAPIRoot = "https://api.example.com"

// memoryEngine is an in-memory domain.SearchEngine. Query matches documents
// whose title or content contains the text, ordered by key.
type memoryEngine struct {
	mu        sync.Mutex
	docs      map[string]domain.SearchDocument
	upserts   int
	upsertErr error
	queryErr  error
	results   []string
}

func newMemoryEngine() *memoryEngine {
	return &memoryEngine{docs: make(map[string]domain.SearchDocument)}
}

func (e *memoryEngine) Upsert(ctx context.Context, generation string, docs []domain.SearchDocument) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.upsertErr != nil {
		return e.upsertErr
	}

	e.upserts++
	next := make(map[string]domain.SearchDocument, len(docs))
	for _, d := range docs {
		next[d.Key] = d
	}
	e.docs = next
	return nil
}

func (e *memoryEngine) Query(ctx context.Context, text string, maxResults int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.queryErr != nil {
		return nil, e.queryErr
	}
	if e.results != nil {
		return e.results, nil
	}

	keys := make([]string, 0, len(e.docs))
	for k := range e.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	needle := strings.ToLower(text)
	var paths []string
	for _, k := range keys {
		d := e.docs[k]
		if strings.Contains(strings.ToLower(d.Title+" "+d.Content), needle) {
			paths = append(paths, d.Path)
		}
	}
	if len(paths) > maxResults {
		paths = paths[:maxResults]
	}
	return paths, nil
}

func (e *memoryEngine) docCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.docs)
}

// staticSnapshots is a SnapshotSource returning a fixed snapshot.
type staticSnapshots struct {
	snapshot *domain.Snapshot
}

func (s staticSnapshots) Snapshot() *domain.Snapshot {
	return s.snapshot
}

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()

	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func postFile(title, date, status, body string) string {
	return "title=" + title + "\ndate=" + date + "\nstatus=" + status + "\n~~~~~~\n" + body
}

func newTestParser() *PostParser {
	return NewPostParser(NewMarkdownRenderer(testAPIRoot), testAPIRoot, DefaultHeroParagraphs)
}

func testPost(path string, date time.Time, listed bool) *domain.Post {
	return &domain.Post{
		Title:     strings.TrimPrefix(path, "/"),
		Date:      date,
		Path:      path,
		PathID:    path,
		Listed:    listed,
		Published: true,
	}
}

func snapshotOf(posts ...*domain.Post) *domain.Snapshot {
	index := make(map[string]*domain.Post, len(posts))
	for _, p := range posts {
		index[p.Path] = p
	}
	return domain.NewSnapshot(index, time.Now())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var errBoom = errors.New("boom")

func removeFile(t *testing.T, root, rel string) {
	t.Helper()

	if err := os.Remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil && !os.IsNotExist(err) {
		t.Fatalf("failed to remove %s: %v", rel, err)
	}
}
