// Package htmlutil extracts taggable text from HTML pages.
package htmlutil

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// LoadHTML parses an HTML page into a goquery Document. The body is decoded
// to UTF-8 using contentType and the page's own meta tags.
func LoadHTML(r io.Reader, contentType string) (*goquery.Document, error) {
	utf8, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(utf8)
}

// LoadHTMLString parses HTML string into a goquery Document.
func LoadHTMLString(htmlStr string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
}

// GetTitle returns the trimmed page title.
func GetTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// IsHTML reports whether the name or the start of the content looks like HTML.
func IsHTML(name string, head []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
		return true
	}
	s := strings.ToLower(strings.TrimSpace(string(head)))
	return strings.HasPrefix(s, "<!doctype html") || strings.HasPrefix(s, "<html")
}
