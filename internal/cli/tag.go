package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/postag"
	"github.com/happyhackingspace/postag/internal/htmlutil"
	"github.com/happyhackingspace/postag/internal/storage"
	"github.com/happyhackingspace/postag/tagger"
)

// input is text read from a file, URL or stdin.
type input struct {
	data        []byte
	source      string
	contentType string
}

func (c *CLI) newTagCommand() *cobra.Command {
	var modelPath string
	var jsonOut bool
	var outFormat string
	var lines bool

	cmd := &cobra.Command{
		Use:   "tag [url-or-file]",
		Short: "Tag text from a URL, text or HTML file, or stdin",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Tag a sentence from stdin
  echo "Heimo on heimonsa päällikkö." | postag tag

  # Tag a text file, one pre-tokenized sentence per line
  postag tag sentences.txt --lines

  # Tag the visible text of a web page
  postag tag https://fi.wikipedia.org/wiki/Suomi

  # Output JSON or CoNLL
  postag tag story.txt --json
  postag tag story.txt --output conll

  # Use a custom model file
  postag tag story.txt --model model.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in *input
			var err error
			if len(args) == 0 {
				if isStdinTerminal() {
					return cmd.Help()
				}
				in, err = readFromStdin()
			} else {
				slog.Debug("Fetching input", "target", args[0])
				in, err = fetchInput(args[0])
			}
			if err != nil {
				return err
			}
			slog.Debug("Input read", "source", in.source, "bytes", len(in.data))

			start := time.Now()
			t, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "duration", time.Since(start))

			start = time.Now()
			sents, err := tagInput(t, in, lines)
			if err != nil {
				return err
			}
			slog.Debug("Tagging completed", "sentences", len(sents), "duration", time.Since(start))

			out := cmd.OutOrStdout()
			switch {
			case jsonOut:
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sents)
			case outFormat == "text":
				for _, s := range sents {
					if _, err := fmt.Fprintln(out, formatTokens(s)); err != nil {
						return err
					}
				}
				return nil
			default:
				format, err := storage.ParseFormat(outFormat)
				if err != nil {
					return err
				}
				corpus := make([]tagger.Sentence, len(sents))
				for i, s := range sents {
					corpus[i] = s
				}
				return storage.WriteSentences(out, format, corpus)
			}
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: auto-detect)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	cmd.Flags().StringVar(&outFormat, "output", "text", "Output format: text, pairs or conll")
	cmd.Flags().BoolVar(&lines, "lines", false, "Treat every input line as one whitespace-tokenized sentence")
	return cmd
}

// tagInput tags HTML pages by their visible text, line input line by line
// and anything else as free text.
func tagInput(t *postag.Tagger, in *input, lines bool) ([][]postag.Token, error) {
	if htmlutil.IsHTML(in.source, in.data) || strings.Contains(in.contentType, "html") {
		return t.TagHTML(bytes.NewReader(in.data), in.contentType)
	}
	if !lines {
		return t.TagDocument(string(in.data))
	}
	var out [][]postag.Token
	scanner := bufio.NewScanner(bytes.NewReader(in.data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tokens, err := t.Tag(line)
		if err != nil {
			return nil, err
		}
		out = append(out, tokens)
	}
	return out, scanner.Err()
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func loadModel(modelPath string) (*postag.Tagger, error) {
	if modelPath != "" {
		slog.Debug("Loading custom model", "path", modelPath)
		return postag.Load(modelPath)
	}
	t, err := postag.New()
	if err != nil {
		return nil, fmt.Errorf("%w (train one with \"postag train\" or pass --model)", err)
	}
	return t, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func fetchInput(target string) (*input, error) {
	if isURL(target) {
		resp, err := http.Get(target)
		if err != nil {
			return nil, fmt.Errorf("fetch URL: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch URL: HTTP %d", resp.StatusCode)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return &input{data: body, source: target, contentType: resp.Header.Get("Content-Type")}, nil
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return &input{data: data, source: target}, nil
}

func readFromStdin() (*input, error) {
	slog.Debug("Reading from stdin")
	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	content := strings.TrimSpace(string(body))
	if content == "" {
		return nil, fmt.Errorf("stdin is empty")
	}

	if isURL(content) && !strings.ContainsAny(content, " \n") {
		slog.Debug("Stdin contains URL", "url", content)
		return fetchInput(content)
	}

	return &input{data: body, source: "stdin"}, nil
}
