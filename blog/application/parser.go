package application

import (
	"strings"
	"time"

	"github.com/dfryer1193/blogapi/blog/domain"
	"github.com/magiconair/properties"
)

const (
	frontMatterDelimiter = "~~~~~~"
	frontMatterDate      = "2006-01-02"
	legacyPathPrefix     = "/jl/blogpost/"

	// DefaultHeroParagraphs is how many leading paragraphs make up a preview.
	DefaultHeroParagraphs = 1
)

// PostParser turns one content file into a Post. It holds no mutable state
// and is safe for concurrent use.
type PostParser struct {
	markdown       MarkdownRenderer
	apiRoot        string
	heroParagraphs int
	location       *time.Location
}

func NewPostParser(markdown MarkdownRenderer, apiRoot string, heroParagraphs int) *PostParser {
	if heroParagraphs <= 0 {
		heroParagraphs = DefaultHeroParagraphs
	}
	return &PostParser{
		markdown:       markdown,
		apiRoot:        apiRoot,
		heroParagraphs: heroParagraphs,
		location:       time.UTC,
	}
}

// Parse builds a Post from the raw file at path. Every failure is a *domain.MalformedPostError.
func (p *PostParser) Parse(path string, raw []byte, hint domain.ContentType) (*domain.Post, error) {
	contents := string(raw)

	header, body, found := strings.Cut(contents, frontMatterDelimiter)
	if !found {
		return nil, malformed(path, "no front matter delimiter", nil)
	}

	fm, err := parseFrontMatter(header)
	if err != nil {
		return nil, malformed(path, "unparsable front matter", err)
	}

	title := fm["title"]
	if title == "" {
		return nil, malformed(path, "missing title", nil)
	}

	rawDate, ok := fm["date"]
	if !ok || rawDate == "" {
		return nil, malformed(path, "missing date", nil)
	}
	date, err := time.ParseInLocation(frontMatterDate, rawDate, p.location)
	if err != nil {
		return nil, malformed(path, "invalid date", err)
	}

	status, ok := fm["status"]
	if !ok {
		return nil, malformed(path, "missing status", nil)
	}

	listed := true
	if v, ok := fm["listed"]; ok {
		listed = strings.EqualFold(v, "true")
	}

	processed := body
	if hint == domain.ContentTypeMarkdown {
		processed, err = p.markdown.Render([]byte(body))
		if err != nil {
			return nil, malformed(path, "markdown rendering failed", err)
		}
	}
	processed = rewriteMediaSources(p.apiRoot, processed)

	scan, err := scanDocument(processed)
	if err != nil {
		return nil, malformed(path, "unparsable HTML", err)
	}

	hero := scan.paragraphs
	truncated := len(hero) > p.heroParagraphs
	if truncated {
		hero = hero[:p.heroParagraphs]
	}

	return &domain.Post{
		Title:            title,
		Date:             date,
		OriginalContent:  contents,
		ProcessedContent: processed,
		Published:        strings.EqualFold(status, "published"),
		Listed:           listed,
		ContentType:      hint,
		Path:             path,
		PathID:           pathID(path),
		Images:           scan.images,
		HeroParagraphs:   hero,
		HeroTruncated:    truncated,
	}, nil
}

// parseFrontMatter reads a key=value properties block into trimmed values.
func parseFrontMatter(header string) (map[string]string, error) {
	loader := &properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	props, err := loader.LoadBytes([]byte(header))
	if err != nil {
		return nil, err
	}

	fm := make(map[string]string, props.Len())
	for _, key := range props.Keys() {
		v, _ := props.Get(key)
		fm[strings.TrimSpace(key)] = strings.TrimSpace(v)
	}
	return fm, nil
}

// pathID strips the legacy routing prefix so a post keeps one identity across path schemes.
func pathID(path string) string {
	if len(path) >= len(legacyPathPrefix) && strings.EqualFold(path[:len(legacyPathPrefix)], legacyPathPrefix) {
		return path[len(legacyPathPrefix):]
	}
	return path
}

func malformed(path, reason string, err error) error {
	return &domain.MalformedPostError{Path: path, Reason: reason, Err: err}
}

// contentTypeFor infers the content type from a file name.
func contentTypeFor(name string) domain.ContentType {
	if strings.HasSuffix(strings.ToLower(name), ".md") {
		return domain.ContentTypeMarkdown
	}
	return domain.ContentTypeHTML
}
