// Package textutil splits free text into sentences and words for tagging.
package textutil

import (
	"regexp"
	"strings"
	"sync"

	"gopkg.in/neurosnap/sentences.v1/english"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+(?:['’\-:][\p{L}\p{N}_]+)*|[^\s\p{L}\p{N}_]`)

// Words splits text into word tokens. Punctuation marks become tokens of
// their own; hyphens, apostrophes and colons inside a word are kept.
func Words(text string) []string {
	return wordRe.FindAllString(text, -1)
}

var (
	newlineRe    = regexp.MustCompile(`[\n\r]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// NormalizeWhitespaces replaces newlines and multiple whitespace with a single space.
func NormalizeWhitespaces(text string) string {
	text = newlineRe.ReplaceAllString(text, " ")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

var (
	splitterOnce sync.Once
	splitter     func(text string) []string
	splitterErr  error
)

func loadSplitter() (func(text string) []string, error) {
	splitterOnce.Do(func() {
		tok, err := english.NewSentenceTokenizer(nil)
		if err != nil {
			splitterErr = err
			return
		}
		splitter = func(text string) []string {
			var out []string
			for _, s := range tok.Tokenize(text) {
				if t := strings.TrimSpace(s.Text); t != "" {
					out = append(out, t)
				}
			}
			return out
		}
	})
	return splitter, splitterErr
}

// Sentences splits text into trimmed sentences with the Punkt sentence
// tokenizer. Whitespace is normalized first.
func Sentences(text string) ([]string, error) {
	split, err := loadSplitter()
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(NormalizeWhitespaces(text))
	if text == "" {
		return nil, nil
	}
	return split(text), nil
}
