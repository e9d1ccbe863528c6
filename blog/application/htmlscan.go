package application

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// documentScan holds what the parser needs from rendered HTML.
type documentScan struct {
	images     []string
	paragraphs []string
}

// scanDocument collects every img src and the text of every p element, in document order.
func scanDocument(markup string) (documentScan, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return documentScan{}, err
	}

	var scan documentScan
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Img:
				if src, ok := attr(n, "src"); ok {
					scan.images = append(scan.images, src)
				}
			case atom.P:
				scan.paragraphs = append(scan.paragraphs, nodeText(n))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return scan, nil
}

// rewriteMediaSources rewrites img sources under the legacy media prefix that
// survived rendering, which happens for raw HTML. Only rewritten tags are
// re-serialized; everything else is copied through byte for byte.
func rewriteMediaSources(apiRoot, markup string) string {
	apiRoot = trimAPIRoot(apiRoot)

	var out strings.Builder
	out.Grow(len(markup))

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			out.Write(z.Raw())
			continue
		}

		// Token lowercases the tag name in place, so keep the original first.
		raw := string(z.Raw())
		tok := z.Token()
		if tok.DataAtom != atom.Img || !rewriteSrc(&tok, apiRoot) {
			out.WriteString(raw)
			continue
		}
		out.WriteString(tok.String())
	}

	return out.String()
}

func rewriteSrc(tok *html.Token, apiRoot string) bool {
	for i, a := range tok.Attr {
		if a.Key != "src" {
			continue
		}
		src := strings.TrimSpace(a.Val)
		if !strings.HasPrefix(src, legacyMediaPrefix) {
			return false
		}
		tok.Attr[i].Val = apiRoot + src
		return true
	}
	return false
}

// htmlToText flattens markup to whitespace-normalized text.
func htmlToText(markup string) string {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	return nodeText(root)
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Script, atom.Style:
				return
			case atom.Br:
				b.WriteByte(' ')
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.DataAtom) {
			b.WriteByte(' ')
		}
	}
	walk(n)

	return strings.Join(strings.Fields(b.String()), " ")
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Li, atom.Ul, atom.Ol, atom.Pre, atom.Blockquote,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Table, atom.Tr, atom.Td, atom.Th:
		return true
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
