// Package storage reads tagged corpora for training and evaluation.
package storage

import (
	"crypto/md5"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/happyhackingspace/postag/tagger"
)

// Storage wraps a corpus file or a folder of corpus files.
type Storage struct {
	Path   string
	Format Format
}

// NewStorage creates a Storage for the given corpus path.
func NewStorage(path string, format Format) *Storage {
	if format == "" {
		format = FormatAuto
	}
	return &Storage{Path: path, Format: format}
}

// Files returns the corpus files, sorted. A file path is returned as is.
// In a folder only files with a corpus extension (see IsCorpusFile) are
// read. Hidden files and directories are skipped.
func (s *Storage) Files() ([]string, error) {
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{s.Path}, nil
	}

	var files []string
	err = filepath.WalkDir(s.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != s.Path && strings.HasPrefix(d.Name(), ".")
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !d.Type().IsRegular() {
			return nil
		}
		if !IsCorpusFile(path) {
			slog.Debug("Skipping non-corpus file", "path", path)
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// IterSentences reads every sentence of the corpus in file order.
func (s *Storage) IterSentences(opts IterOptions) ([]tagger.Sentence, error) {
	files, err := s.Files()
	if err != nil {
		return nil, fmt.Errorf("list corpus: %w", err)
	}

	seen := make(map[string]bool)
	var sentences []tagger.Sentence

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			slog.Warn("Cannot read corpus file", "path", path, "error", err)
			continue
		}
		sents, err := ReadSentences(f, s.Format, path)
		f.Close()
		if err != nil {
			return nil, err
		}
		slog.Debug("Read corpus file", "path", path, "sentences", len(sents))

		for _, sent := range sents {
			if opts.DropDuplicates {
				hash := sentenceHash(sent)
				if seen[hash] {
					continue
				}
				seen[hash] = true
			}
			sentences = append(sentences, sent)
			if opts.MaxSentences > 0 && len(sentences) >= opts.MaxSentences {
				return sentences, nil
			}
		}
	}

	return sentences, nil
}

func sentenceHash(sent tagger.Sentence) string {
	h := md5.New()
	for _, tok := range sent {
		fmt.Fprintf(h, "%s\x00%s\x01", tok.Word, tok.Tag)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// IterOptions controls sentence iteration behavior.
type IterOptions struct {
	DropDuplicates bool
	MaxSentences   int // 0 reads everything
}

// DefaultIterOptions returns the default options for iterating sentences.
// Duplicate sentences are kept since they carry real word/tag frequencies.
func DefaultIterOptions() IterOptions {
	return IterOptions{}
}

// CorpusStats summarizes a corpus.
type CorpusStats struct {
	Sentences int
	Tokens    int
	Words     int
	Tags      int
}

// Summarize counts sentences, tokens, distinct words and distinct tags.
func Summarize(sentences []tagger.Sentence) CorpusStats {
	words := make(map[string]bool)
	tags := make(map[string]bool)
	st := CorpusStats{Sentences: len(sentences)}
	for _, sent := range sentences {
		st.Tokens += len(sent)
		for _, tok := range sent {
			words[tok.Word] = true
			tags[tok.Tag] = true
		}
	}
	st.Words = len(words)
	st.Tags = len(tags)
	return st
}
