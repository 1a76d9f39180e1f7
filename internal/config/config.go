// Package config reads optional YAML training settings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/postag/internal/storage"
	"github.com/happyhackingspace/postag/tagger"
)

// Config holds the settings shared by the train, evaluate and stats commands.
type Config struct {
	Iterations   int     `yaml:"iterations"`
	MinCount     int     `yaml:"min_count"`
	Ratio        float64 `yaml:"ratio"`
	Seed         uint64  `yaml:"seed"`
	Folds        int     `yaml:"folds"`
	Format       string  `yaml:"format"`
	MaxSentences int     `yaml:"max_sentences"`
	Dedup        bool    `yaml:"dedup"`
}

// Default returns the built-in settings.
func Default() Config {
	tc := tagger.DefaultConfig()
	return Config{
		Iterations: tc.Iterations,
		MinCount:   tc.MinCount,
		Ratio:      tc.Ratio,
		Seed:       tc.Seed,
		Folds:      10,
		Format:     string(storage.FormatAuto),
	}
}

// Load reads a YAML file. Keys missing from the file keep their defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return fmt.Errorf("config: iterations must be positive, got %d", c.Iterations)
	}
	if c.MinCount < 0 {
		return fmt.Errorf("config: min_count must not be negative, got %d", c.MinCount)
	}
	if c.Ratio <= 0 || c.Ratio > 1 {
		return fmt.Errorf("config: ratio must be in (0, 1], got %v", c.Ratio)
	}
	if c.Folds < 2 {
		return fmt.Errorf("config: folds must be at least 2, got %d", c.Folds)
	}
	if c.MaxSentences < 0 {
		return fmt.Errorf("config: max_sentences must not be negative, got %d", c.MaxSentences)
	}
	if _, err := storage.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// TaggerConfig returns the training hyperparameters.
func (c Config) TaggerConfig() tagger.Config {
	tc := tagger.DefaultConfig()
	tc.Iterations = c.Iterations
	tc.MinCount = c.MinCount
	tc.Ratio = c.Ratio
	tc.Seed = c.Seed
	return tc
}

// IterOptions returns the corpus reading options.
func (c Config) IterOptions() storage.IterOptions {
	opts := storage.DefaultIterOptions()
	opts.MaxSentences = c.MaxSentences
	opts.DropDuplicates = c.Dedup
	return opts
}

// CorpusFormat returns the parsed corpus format. Validate has already
// rejected unknown names.
func (c Config) CorpusFormat() storage.Format {
	f, err := storage.ParseFormat(c.Format)
	if err != nil {
		return storage.FormatAuto
	}
	return f
}
