package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/happyhackingspace/postag/tagger"
)

// Format is a corpus file layout.
type Format string

const (
	// FormatAuto detects the format from the file contents.
	FormatAuto Format = "auto"
	// FormatPairs is one "word tag" pair per line, blank line between sentences.
	FormatPairs Format = "pairs"
	// FormatCoNLL is tab separated CoNLL-X: word in column 2, tag in column 5.
	FormatCoNLL Format = "conll"
)

// ErrMalformed is returned for corpus lines that cannot be parsed.
var ErrMalformed = errors.New("storage: malformed line")

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatAuto, FormatPairs, FormatCoNLL:
		return f, nil
	case "":
		return FormatAuto, nil
	case "conllx", "conllu":
		return FormatCoNLL, nil
	}
	return "", fmt.Errorf("storage: unknown format %q", name)
}

// corpusExts are the extensions picked up when walking a corpus folder.
var corpusExts = map[string]bool{
	".txt":    true,
	".pairs":  true,
	".conll":  true,
	".conllx": true,
	".conllu": true,
}

// IsCorpusFile reports whether a file in a corpus folder should be read.
func IsCorpusFile(name string) bool {
	return corpusExts[strings.ToLower(filepath.Ext(name))]
}

// DetectFormat guesses the format from the first token line of a file.
// Lines with at least 5 tab separated columns are CoNLL, anything else
// is pairs.
func DetectFormat(line string) Format {
	if len(strings.Split(line, "\t")) >= 5 {
		return FormatCoNLL
	}
	return FormatPairs
}

type lineParser func(line string) (tok tagger.Token, sep, skip bool, err error)

func parserFor(format Format) lineParser {
	if format == FormatCoNLL {
		return parseCoNLL
	}
	return parsePairs
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#") || strings.HasPrefix(line, "<")
}

// ReadSentences parses every sentence in r. Name is only used in errors.
// FormatAuto detects the format from the first line that is neither blank
// nor a comment.
func ReadSentences(r io.Reader, format Format, name string) ([]tagger.Sentence, error) {
	var parse lineParser
	if format != FormatAuto {
		parse = parserFor(format)
	}

	var sentences []tagger.Sentence
	var cur tagger.Sentence
	flush := func() {
		if cur != nil {
			sentences = append(sentences, cur)
			cur = nil
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if parse == nil {
			if strings.TrimSpace(line) == "" || isComment(line) {
				continue
			}
			parse = parserFor(DetectFormat(line))
		}
		tok, sep, skip, err := parse(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %v", ErrMalformed, name, lineNo, err)
		}
		switch {
		case sep:
			flush()
		case skip:
		default:
			cur = append(cur, tok)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", name, err)
	}
	flush()
	return sentences, nil
}

// parsePairs reads a "word tag" line. Lines with fewer than two fields end
// the sentence.
func parsePairs(line string) (tok tagger.Token, sep, skip bool, err error) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 0, 1:
		return tok, true, false, nil
	case 2:
		return tagger.Token{Word: fields[0], Tag: fields[1]}, false, false, nil
	}
	return tok, false, false, fmt.Errorf("expected 2 fields, got %d", len(fields))
}

// parseCoNLL reads one CoNLL-X token line. Blank lines and lines starting
// with '#' or '<' separate sentences. Multiword ranges and empty nodes are
// skipped.
func parseCoNLL(line string) (tok tagger.Token, sep, skip bool, err error) {
	if strings.TrimSpace(line) == "" || isComment(line) {
		return tok, true, false, nil
	}
	cols := strings.Split(line, "\t")
	if len(cols) < 5 {
		return tok, false, false, fmt.Errorf("expected at least 5 columns, got %d", len(cols))
	}
	if strings.ContainsAny(cols[0], "-.") {
		return tok, false, true, nil
	}
	if cols[1] == "" || cols[4] == "" {
		return tok, false, false, fmt.Errorf("empty word or tag")
	}
	return tagger.Token{Word: cols[1], Tag: cols[4]}, false, false, nil
}

// WriteSentences writes sentences in the given format. FormatAuto writes pairs.
func WriteSentences(w io.Writer, format Format, sentences []tagger.Sentence) error {
	bw := bufio.NewWriter(w)
	for _, sent := range sentences {
		for i, tok := range sent {
			var err error
			if format == FormatCoNLL {
				_, err = fmt.Fprintf(bw, "%d\t%s\t_\t_\t%s\t_\n", i+1, tok.Word, tok.Tag)
			} else {
				_, err = fmt.Fprintf(bw, "%s %s\n", tok.Word, tok.Tag)
			}
			if err != nil {
				return err
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
