package content

import (
	"context"
	"testing"

	"github.com/dfryer1193/blogapi/blog/domain"
)

func TestHTMLPassthrough(t *testing.T) {
	p := NewHTMLPassthrough(AboutPath)

	if got := p.Content(); got != "" {
		t.Errorf("Content() before first index = %q, want empty", got)
	}

	about := &domain.Post{Path: AboutPath, ProcessedContent: "<p>About me</p>"}
	if err := p.OnIndexingFinished(context.Background(), finished(about)); err != nil {
		t.Fatalf("OnIndexingFinished() error = %v", err)
	}
	if got := p.Content(); got != "<p>About me</p>" {
		t.Errorf("Content() = %q, want %q", got, "<p>About me</p>")
	}

	if err := p.OnIndexingFinished(context.Background(), finished()); err != nil {
		t.Fatalf("OnIndexingFinished() error = %v", err)
	}
	if got := p.Content(); got != "" {
		t.Errorf("Content() after the page disappeared = %q, want empty", got)
	}
}
