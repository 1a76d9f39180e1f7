package htmlutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/happyhackingspace/postag/internal/textutil"
)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Iframe:   true,
	atom.Select:   true,
	atom.Textarea: true,
}

// blocks end the current text block when they open or close.
var blocks = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Br: true, atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Footer: true, atom.Form: true, atom.H1: true,
	atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Td: true, atom.Th: true, atom.Tr: true, atom.Ul: true,
}

// ExtractText returns the visible text of the document body split into
// blocks, one per paragraph-like element. Whitespace inside a block is
// collapsed.
func ExtractText(doc *goquery.Document) []string {
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var out []string
	var buf []string

	flushBuf := func() {
		text := strings.TrimSpace(textutil.NormalizeWhitespaces(strings.Join(buf, "")))
		if text != "" {
			out = append(out, text)
		}
		buf = buf[:0]
	}

	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf = append(buf, n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
		}

		block := n.Type == html.ElementNode && blocks[n.DataAtom]
		if block {
			flushBuf()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
		if block {
			flushBuf()
		}
	}

	for _, n := range root.Nodes {
		visit(n)
	}
	flushBuf()
	return out
}
