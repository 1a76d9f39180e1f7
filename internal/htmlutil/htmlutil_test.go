package htmlutil

import (
	"bytes"
	"reflect"
	"testing"
)

const testHTML = `<!DOCTYPE html>
<html><head><title> Heimo </title><style>p { color: red }</style></head>
<body>
<h1>Heimo on heimonsa päällikkö.</h1>
<p>Se asuu   metsässä.<br>Vuonna 1999 <b>se</b> muutti.</p>
<script>var x = "ignored";</script>
<ul><li>yksi</li><li>kaksi</li></ul>
<!-- comment -->
<select><option>hidden</option></select>
</body></html>
`

func TestExtractText(t *testing.T) {
	doc, err := LoadHTMLString(testHTML)
	if err != nil {
		t.Fatal(err)
	}
	got := ExtractText(doc)
	want := []string{
		"Heimo on heimonsa päällikkö.",
		"Se asuu metsässä.",
		"Vuonna 1999 se muutti.",
		"yksi",
		"kaksi",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractText = %q, want %q", got, want)
	}
}

func TestGetTitle(t *testing.T) {
	doc, err := LoadHTMLString(testHTML)
	if err != nil {
		t.Fatal(err)
	}
	if got := GetTitle(doc); got != "Heimo" {
		t.Errorf("GetTitle = %q, want %q", got, "Heimo")
	}
}

func TestLoadHTMLCharset(t *testing.T) {
	// "päällikkö" in ISO-8859-1.
	page := []byte("<html><body><p>p\xe4\xe4llikk\xf6</p></body></html>")
	doc, err := LoadHTML(bytes.NewReader(page), "text/html; charset=iso-8859-1")
	if err != nil {
		t.Fatal(err)
	}
	got := ExtractText(doc)
	if len(got) != 1 || got[0] != "päällikkö" {
		t.Errorf("ExtractText = %q, want [päällikkö]", got)
	}
}

func TestIsHTML(t *testing.T) {
	tests := []struct {
		name string
		head string
		want bool
	}{
		{"page.html", "", true},
		{"PAGE.HTM", "", true},
		{"-", "  <!DOCTYPE html><html>", true},
		{"-", "<HTML><body>", true},
		{"corpus.txt", "Heimo N", false},
	}
	for _, tt := range tests {
		if got := IsHTML(tt.name, []byte(tt.head)); got != tt.want {
			t.Errorf("IsHTML(%q, %q) = %v, want %v", tt.name, tt.head, got, tt.want)
		}
	}
}
