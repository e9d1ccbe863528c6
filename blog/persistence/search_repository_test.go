package persistence

import (
	"context"
	"reflect"
	"testing"

	"github.com/dfryer1193/blogapi/blog/domain"
)

func testDocuments() []domain.SearchDocument {
	return []domain.SearchDocument{
		{
			Key:             "Alpha2024-1-1",
			Path:            "/a.html",
			Title:           "Alpha",
			OriginalContent: "title=Alpha\n~~~~~~\nhello world",
			Content:         "hello world",
			Time:            1704067200000,
			Published:       true,
		},
		{
			Key:             "Beta2024-2-1",
			Path:            "/b.html",
			Title:           "Beta",
			OriginalContent: "title=Beta\n~~~~~~\ngoodbye moon",
			Content:         "goodbye moon",
			Time:            1706745600000,
			Published:       true,
		},
	}
}

func countDocuments(t *testing.T, repo *SQLiteSearchRepository) int {
	t.Helper()

	var count int
	if err := repo.db.QueryRow("SELECT COUNT(*) FROM search_documents").Scan(&count); err != nil {
		t.Fatalf("failed to count documents: %v", err)
	}
	return count
}

func TestSearchRepository_UpsertAndQuery(t *testing.T) {
	repo := NewSearchRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, "g1", testDocuments()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "body term", query: "hello", want: []string{"/a.html"}},
		{name: "prefix", query: "goodb", want: []string{"/b.html"}},
		{name: "title case insensitive", query: "BETA", want: []string{"/b.html"}},
		{name: "no match", query: "zebra", want: []string{}},
		{name: "operators only", query: "AND OR NOT", want: []string{}},
		{name: "syntax characters", query: `"(hello*`, want: []string{"/a.html"}},
		{name: "blank", query: "   ", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Query(ctx, tt.query, 10)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Query(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestSearchRepository_UpsertIsIdempotent(t *testing.T) {
	repo := NewSearchRepository(setupTestDB(t))
	ctx := context.Background()

	for _, gen := range []string{"g1", "g2", "g3"} {
		if err := repo.Upsert(ctx, gen, testDocuments()); err != nil {
			t.Fatalf("Upsert(%s) error = %v", gen, err)
		}
	}

	if got := countDocuments(t, repo); got != 2 {
		t.Errorf("document count = %d, want 2", got)
	}

	got, err := repo.Query(ctx, "hello", 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Query() returned %d results, want 1", len(got))
	}
}

func TestSearchRepository_UpsertRetiresStaleDocuments(t *testing.T) {
	repo := NewSearchRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, "g1", testDocuments()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	renamed := testDocuments()[:1]
	renamed[0].Key = "Alphabet2024-1-1"
	renamed[0].Title = "Alphabet"

	if err := repo.Upsert(ctx, "g2", renamed); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if got := countDocuments(t, repo); got != 1 {
		t.Errorf("document count = %d, want 1", got)
	}

	got, err := repo.Query(ctx, "goodbye", 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Query(goodbye) = %v, want no results", got)
	}
}

func TestSearchRepository_QuerySkipsDrafts(t *testing.T) {
	repo := NewSearchRepository(setupTestDB(t))
	ctx := context.Background()

	docs := testDocuments()
	docs[1].Published = false
	docs[1].Content = "hello moon"

	if err := repo.Upsert(ctx, "g1", docs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if got := countDocuments(t, repo); got != 2 {
		t.Errorf("document count = %d, want 2", got)
	}

	got, err := repo.Query(ctx, "hello", 10)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if want := []string{"/a.html"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Query(hello) = %v, want %v", got, want)
	}
}

func TestSearchRepository_UpsertRejectsInvalidInput(t *testing.T) {
	repo := NewSearchRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Upsert(ctx, "g1", testDocuments()); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.Upsert(ctx, "", testDocuments()); err == nil {
		t.Error("Upsert() with empty generation should fail")
	}

	bad := append(testDocuments(), domain.SearchDocument{Path: "/c.html"})
	if err := repo.Upsert(ctx, "g2", bad); err == nil {
		t.Fatal("Upsert() with empty key should fail")
	}

	// The failed batch rolled back, so generation g1 is still intact.
	if got := countDocuments(t, repo); got != 2 {
		t.Errorf("document count = %d, want 2", got)
	}
}

func TestSearchRepository_QueryMaxResults(t *testing.T) {
	repo := NewSearchRepository(setupTestDB(t))
	ctx := context.Background()

	docs := testDocuments()
	docs[1].Content = "hello moon"
	if err := repo.Upsert(ctx, "g1", docs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Query(ctx, "hello", 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Query() returned %d results, want 1", len(got))
	}

	got, err = repo.Query(ctx, "hello", 0)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Query() with max 0 returned %d results", len(got))
	}
}

func TestSanitizeQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "spring", want: `"spring"*`},
		{in: "spring boot", want: `"spring"* "boot"*`},
		{in: `spring" OR "x`, want: `"spring"* "x"*`},
		{in: "café", want: `"café"*`},
		{in: "k8s-operator", want: `"k8s-operator"*`},
		{in: "(*)", want: ""},
	}

	for _, tt := range tests {
		if got := sanitizeQuery(tt.in); got != tt.want {
			t.Errorf("sanitizeQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
