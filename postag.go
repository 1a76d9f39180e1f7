// Package postag tags words with their part of speech.
//
// It wraps a greedy left-to-right averaged perceptron tagger with model
// discovery, persistence and free text handling.
//
//	t, _ := postag.New()
//	tokens, _ := t.Tag("Heimo on heimonsa päällikkö .")
//	for _, tok := range tokens {
//	    fmt.Println(tok.Word, tok.Tag) // "heimo N", "on V", ...
//	}
package postag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/happyhackingspace/postag/internal/htmlutil"
	"github.com/happyhackingspace/postag/internal/store"
	"github.com/happyhackingspace/postag/internal/textutil"
	"github.com/happyhackingspace/postag/tagger"
)

// ModelFile is the default model file name.
const ModelFile = "model.json"

// ErrNotInitialized is returned when tagging with a zero Tagger.
var ErrNotInitialized = errors.New("postag: tagger not initialized")

// Token is a word with its assigned tag.
type Token = tagger.Token

// Tagger wraps a trained part-of-speech model.
type Tagger struct {
	t *tagger.Tagger
}

// New loads the tagger from "model.json", searching the current directory
// and parent directories up to the module root (where go.mod lives), then
// the user cache directory.
func New() (*Tagger, error) {
	path, err := findModel(ModelFile)
	if err != nil {
		return nil, fmt.Errorf("postag: %w", err)
	}
	return Load(path)
}

// ModelDir returns the directory for cached models.
func ModelDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "postag")
}

func findModel(name string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		// Stop at module root
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cached := filepath.Join(ModelDir(), name)
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}
	return "", fmt.Errorf("%s not found", name)
}

// isSQLite reports whether path names a SQLite model.
func isSQLite(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// Load loads a trained tagger from a model file. Files ending in .db or
// .sqlite are read as SQLite databases, anything else as JSON.
func Load(path string) (*Tagger, error) {
	var t *tagger.Tagger
	var err error
	if isSQLite(path) {
		t, err = store.LoadModel(path)
	} else {
		t, err = tagger.LoadModel(path)
	}
	if err != nil {
		return nil, fmt.Errorf("postag: %w", err)
	}
	return &Tagger{t: t}, nil
}

// Save writes the tagger to a model file, picking the encoding like Load.
func (t *Tagger) Save(path string) error {
	if t.t == nil {
		return ErrNotInitialized
	}
	var err error
	if isSQLite(path) {
		err = store.SaveModel(t.t, path)
	} else {
		err = tagger.SaveModel(t.t, path)
	}
	if err != nil {
		return fmt.Errorf("postag: %w", err)
	}
	return nil
}

// Model returns the underlying tagger.
func (t *Tagger) Model() *tagger.Tagger {
	return t.t
}

// Tag splits a sentence on whitespace and tags every word. Returned words
// are normalized.
func (t *Tagger) Tag(sentence string) ([]Token, error) {
	if t.t == nil {
		return nil, ErrNotInitialized
	}
	return t.t.TagText(sentence), nil
}

// TagWords tags an already tokenized sentence.
func (t *Tagger) TagWords(words []string) ([]Token, error) {
	if t.t == nil {
		return nil, ErrNotInitialized
	}
	return t.t.Tag(words), nil
}

// TagDocument splits free text into sentences and words and tags each
// sentence. Punctuation becomes separate tokens.
func (t *Tagger) TagDocument(text string) ([][]Token, error) {
	if t.t == nil {
		return nil, ErrNotInitialized
	}
	sentences, err := textutil.Sentences(text)
	if err != nil {
		return nil, fmt.Errorf("postag: %w", err)
	}
	out := make([][]Token, 0, len(sentences))
	for _, s := range sentences {
		words := textutil.Words(s)
		if len(words) == 0 {
			continue
		}
		out = append(out, t.t.Tag(words))
	}
	return out, nil
}

// TagHTML tags the visible text of an HTML page. Each text block is split
// into sentences on its own.
func (t *Tagger) TagHTML(r io.Reader, contentType string) ([][]Token, error) {
	if t.t == nil {
		return nil, ErrNotInitialized
	}
	doc, err := htmlutil.LoadHTML(r, contentType)
	if err != nil {
		return nil, fmt.Errorf("postag: parse html: %w", err)
	}
	var out [][]Token
	for _, block := range htmlutil.ExtractText(doc) {
		sents, err := t.TagDocument(block)
		if err != nil {
			return nil, err
		}
		out = append(out, sents...)
	}
	return out, nil
}
