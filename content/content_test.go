package content

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
)

// stubFetcher serves canned bodies by URL.
type stubFetcher struct {
	bodies map[string]string
	err    error
	urls   []string
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

func finished(posts ...*domain.Post) domain.IndexingFinished {
	index := make(map[string]*domain.Post, len(posts))
	for _, p := range posts {
		index[p.Path] = p
	}
	return domain.IndexingFinished{RunID: "r1", Snapshot: domain.NewSnapshot(index, time.Now()), At: time.Now()}
}

func writeContent(t *testing.T, root, name, body string) {
	t.Helper()

	dir := filepath.Join(root, "content")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}
