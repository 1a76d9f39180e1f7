package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/postag/internal/storage"
)

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
iterations: 5
ratio: 0.9
format: conllu
max_sentences: 1000
dedup: true
`))
	require.NoError(t, err)

	assert.Equal(t, 5, c.Iterations)
	assert.Equal(t, 20, c.MinCount, "missing keys keep defaults")
	assert.Equal(t, 0.9, c.Ratio)
	assert.Equal(t, uint64(1), c.Seed)
	assert.Equal(t, 10, c.Folds)
	assert.Equal(t, storage.FormatCoNLL, c.CorpusFormat())

	tc := c.TaggerConfig()
	assert.Equal(t, 5, tc.Iterations)
	assert.Equal(t, 0.9, tc.Ratio)

	opts := c.IterOptions()
	assert.True(t, opts.DropDuplicates)
	assert.Equal(t, 1000, opts.MaxSentences)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"syntax", "iterations: [1"},
		{"iterations", "iterations: 0"},
		{"min count", "min_count: -1"},
		{"ratio", "ratio: 1.5"},
		{"zero ratio", "ratio: 0"},
		{"folds", "folds: 1"},
		{"format", "format: xml"},
		{"max sentences", "max_sentences: -3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postag.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 42\nfolds: 5\n"), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, 5, c.Folds)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
