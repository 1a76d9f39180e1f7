package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happyhackingspace/postag/tagger"
)

func trainTagger(t *testing.T) *tagger.Tagger {
	t.Helper()
	corpus := []tagger.Sentence{
		{{Word: "Heimo", Tag: "N"}, {Word: "on", Tag: "V"}, {Word: "heimonsa", Tag: "N"}, {Word: "päällikkö", Tag: "N"}},
		{{Word: "Se", Tag: "Pron"}, {Word: "on", Tag: "V"}, {Word: "1999", Tag: "Num"}},
	}
	config := tagger.DefaultConfig()
	config.Iterations = 3
	config.MinCount = 1
	tg, _, err := tagger.Train(corpus, config)
	require.NoError(t, err)
	return tg
}

func TestSaveLoadTagger(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	tg := trainTagger(t)
	require.NoError(t, s.SaveTagger(tg))

	loaded, err := s.LoadTagger()
	require.NoError(t, err)

	want, err := tagger.MarshalModel(tg)
	require.NoError(t, err)
	got, err := tagger.MarshalModel(loaded)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	words := []string{"heimo", "on", "päällikkö", "2000"}
	assert.Equal(t, tg.Tag(words), loaded.Tag(words))
}

func TestSaveTaggerOverwrites(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SaveTagger(trainTagger(t)))

	small, _, err := tagger.Train([]tagger.Sentence{{{Word: "x", Tag: "X"}}}, tagger.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, s.SaveTagger(small))

	loaded, err := s.LoadTagger()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, loaded.Statistics().Words())
	assert.Equal(t, small.Model().Updates(), loaded.Model().Updates())
}

func TestLoadTaggerEmpty(t *testing.T) {
	s, err := NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	_, err = s.LoadTagger()
	assert.ErrorIs(t, err, tagger.ErrDecode)
}

func TestSaveLoadModelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.db")
	tg := trainTagger(t)
	require.NoError(t, SaveModel(tg, path))

	loaded, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, tg.Singletons(), loaded.Singletons())

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestLoadModelNotSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("not a database\n", 100)), 0644))

	_, err := LoadModel(path)
	assert.ErrorIs(t, err, tagger.ErrDecode)
}

func TestLoadModelForeignDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE notes (body TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = LoadModel(path)
	assert.ErrorIs(t, err, tagger.ErrDecode)

	// Loading must not add the model schema to the file.
	db, err = sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table'`).Scan(&n))
	assert.Equal(t, 1, n)
}
