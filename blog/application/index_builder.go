package application

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/rs/zerolog/log"
)

const (
	contentDirName = "content"
	searchKeyDate  = "2006-1-2"
)

// IndexBuilder walks a working tree and turns its content files into a Snapshot,
// mirroring every post into the search engine.
type IndexBuilder struct {
	parser  *PostParser
	engine  domain.SearchEngine
	workers int
	now     func() time.Time
}

func NewIndexBuilder(parser *PostParser, engine domain.SearchEngine, workers int) *IndexBuilder {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &IndexBuilder{
		parser:  parser,
		engine:  engine,
		workers: workers,
		now:     time.Now,
	}
}

// parsedFile pairs a post with the file it came from so path collisions resolve deterministically.
type parsedFile struct {
	source string
	post   *domain.Post
}

// Build parses every content file under root/content. The first parse failure
// aborts the build before anything is written to the search engine.
func (b *IndexBuilder) Build(ctx context.Context, root string, generation string) (*domain.Snapshot, error) {
	contentDir := filepath.Join(root, contentDirName)

	files, err := contentFiles(contentDir)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate content files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", domain.ErrEmptyIndex, contentDir)
	}

	entries, err := b.parseAll(ctx, contentDir, files)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*domain.Post, len(entries))
	docs := make([]domain.SearchDocument, 0, len(entries))
	for path, entry := range entries {
		index[path] = entry.post
		docs = append(docs, toSearchDocument(entry.post))
	}

	if err := b.engine.Upsert(ctx, generation, docs); err != nil {
		return nil, fmt.Errorf("failed to write search documents: %w", err)
	}

	return domain.NewSnapshot(index, b.now()), nil
}

func (b *IndexBuilder) parseAll(ctx context.Context, contentDir string, files []string) (map[string]parsedFile, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string)
	entries := make(map[string]parsedFile, len(files))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
	)

	for range b.workers {
		wg.Go(func() {
			for file := range jobs {
				if ctx.Err() != nil {
					continue
				}

				entry, err := b.parseFile(contentDir, file)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						cancel()
					})
					continue
				}

				mu.Lock()
				if existing, ok := entries[entry.post.Path]; ok {
					log.Warn().
						Str("path", entry.post.Path).
						Str("kept", min(existing.source, entry.source)).
						Msg("Content files collide on the same path")
					if existing.source < entry.source {
						entry = existing
					}
				}
				entries[entry.post.Path] = entry
				mu.Unlock()
			}
		})
	}

feed:
	for _, file := range files {
		select {
		case jobs <- file:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("index build cancelled: %w", err)
	}

	return entries, nil
}

func (b *IndexBuilder) parseFile(contentDir, file string) (parsedFile, error) {
	raw, err := os.ReadFile(file)
	if err != nil {
		return parsedFile{}, fmt.Errorf("failed to read %s: %w", file, err)
	}

	path, err := canonicalPath(contentDir, file)
	if err != nil {
		return parsedFile{}, err
	}

	post, err := b.parser.Parse(path, raw, contentTypeFor(file))
	if err != nil {
		return parsedFile{}, err
	}

	return parsedFile{source: file, post: post}, nil
}

// contentFiles lists regular .md and .html files below dir.
func contentFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isContentFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func isContentFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".html")
}

// canonicalPath maps content/Foo/Bar.md to /foo/bar.html.
func canonicalPath(contentDir, file string) (string, error) {
	rel, err := filepath.Rel(contentDir, file)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", file, err)
	}

	path := strings.ToLower("/" + filepath.ToSlash(rel))
	if strings.HasSuffix(path, ".md") {
		path = strings.TrimSuffix(path, ".md") + ".html"
	}
	return path, nil
}

// searchKey is the alphabetic characters of the title followed by the publish date.
func searchKey(post *domain.Post) string {
	var b strings.Builder
	for _, r := range post.Title {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	b.WriteString(post.Date.Format(searchKeyDate))
	return b.String()
}

func toSearchDocument(post *domain.Post) domain.SearchDocument {
	return domain.SearchDocument{
		Key:             searchKey(post),
		Path:            post.Path,
		Title:           post.Title,
		OriginalContent: post.OriginalContent,
		Content:         htmlToText(post.ProcessedContent),
		Time:            post.Date.UnixMilli(),
		Published:       post.Published,
	}
}
