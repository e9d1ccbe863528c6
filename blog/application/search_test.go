package application

import (
	"context"
	"errors"
	"testing"
)

func TestSearchFacade_Search(t *testing.T) {
	snapshot := snapshotOf(
		testPost("/a.html", day(2024, 1, 1), true),
		testPost("/b.html", day(2024, 2, 1), false),
		testPost("/c.html", day(2024, 3, 1), true),
	)

	tests := []struct {
		name      string
		results   []string
		query     string
		offset    int
		pageSize  int
		wantTotal int
		wantPaths []string
	}{
		{
			name:      "Engine order preserved",
			results:   []string{"/c.html", "/a.html"},
			query:     "post",
			pageSize:  10,
			wantTotal: 2,
			wantPaths: []string{"/c.html", "/a.html"},
		},
		{
			name:      "Unlisted posts are searchable",
			results:   []string{"/b.html"},
			query:     "post",
			pageSize:  10,
			wantTotal: 1,
			wantPaths: []string{"/b.html"},
		},
		{
			name:      "Stale paths skipped",
			results:   []string{"/gone.html", "/a.html"},
			query:     "post",
			pageSize:  10,
			wantTotal: 1,
			wantPaths: []string{"/a.html"},
		},
		{
			name:      "Duplicate paths collapsed",
			results:   []string{"/a.html", "/a.html", "/c.html"},
			query:     "post",
			pageSize:  10,
			wantTotal: 2,
			wantPaths: []string{"/a.html", "/c.html"},
		},
		{
			name:      "Windowed after resolution",
			results:   []string{"/gone.html", "/a.html", "/b.html", "/c.html"},
			query:     "post",
			offset:    1,
			pageSize:  1,
			wantTotal: 3,
			wantPaths: []string{"/b.html"},
		},
		{
			name:      "Blank query",
			results:   []string{"/a.html"},
			query:     "  ",
			pageSize:  10,
			wantTotal: 0,
			wantPaths: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newMemoryEngine()
			engine.results = tt.results

			facade := NewSearchFacade(engine, staticSnapshots{snapshot}, 0)
			page, err := facade.Search(context.Background(), tt.query, tt.offset, tt.pageSize)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}

			if page.TotalMatches != tt.wantTotal {
				t.Errorf("TotalMatches = %d, want %d", page.TotalMatches, tt.wantTotal)
			}
			if got := paths(page.Posts); !equalStrings(got, tt.wantPaths) {
				t.Errorf("posts = %v, want %v", got, tt.wantPaths)
			}
		})
	}
}

func TestSearchFacade_EngineError(t *testing.T) {
	engine := newMemoryEngine()
	engine.queryErr = errBoom

	_, err := NewSearchFacade(engine, staticSnapshots{snapshotOf()}, 10).Search(context.Background(), "x", 0, 10)
	if !errors.Is(err, errBoom) {
		t.Errorf("Search() error = %v, want %v", err, errBoom)
	}
}

func TestNewSearchFacade_DefaultMax(t *testing.T) {
	facade := NewSearchFacade(newMemoryEngine(), staticSnapshots{snapshotOf()}, -1)
	if facade.maxResults != DefaultMaxSearchResults {
		t.Errorf("maxResults = %d, want %d", facade.maxResults, DefaultMaxSearchResults)
	}
}
