package application

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// legacyMediaPrefix is where images were served before they moved to the API host.
const legacyMediaPrefix = "/media/"

// mediaLinkTransformer points legacy /media/ image destinations at the API host.
type mediaLinkTransformer struct {
	apiRoot string
}

func (t *mediaLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := strings.TrimSpace(string(img.Destination))
		if strings.HasPrefix(dest, legacyMediaPrefix) {
			img.Destination = []byte(t.apiRoot + dest)
		}

		return ast.WalkContinue, nil
	})
}

// MarkdownRenderer defines the interface for converting markdown to HTML.
type MarkdownRenderer interface {
	Render(markdown []byte) (string, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer builds a renderer whose legacy media images resolve against apiRoot.
// Raw HTML is passed through untouched.
func NewMarkdownRenderer(apiRoot string) MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&mediaLinkTransformer{apiRoot: trimAPIRoot(apiRoot)}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

func (r *MarkdownRendererImpl) Render(markdown []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return buf.String(), nil
}

func trimAPIRoot(apiRoot string) string {
	return strings.TrimSuffix(strings.TrimSpace(apiRoot), "/")
}
