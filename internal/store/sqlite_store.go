// Package store provides SQLite-backed persistence for trained taggers.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/happyhackingspace/postag/perceptron"
	"github.com/happyhackingspace/postag/tagger"
)

// SQLiteStore holds one tagger model.
type SQLiteStore struct {
	mu sync.RWMutex
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS meta (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

-- Perceptron state
CREATE TABLE IF NOT EXISTS stamps (
    pair TEXT PRIMARY KEY,
    iteration INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS weights (
    feature TEXT NOT NULL,
    tag TEXT NOT NULL,
    weight REAL NOT NULL,
    PRIMARY KEY (feature, tag)
);
CREATE TABLE IF NOT EXISTS totals (
    pair TEXT PRIMARY KEY,
    total REAL NOT NULL
);

-- Tagger state
CREATE TABLE IF NOT EXISTS singletons (
    word TEXT PRIMARY KEY,
    tag TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS tags (
    tag TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS words (
    word TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS freqs (
    word TEXT NOT NULL,
    tag TEXT NOT NULL,
    count INTEGER NOT NULL,
    PRIMARY KEY (word, tag)
);
`

var tables = []string{"meta", "stamps", "weights", "totals", "singletons", "tags", "words", "freqs"}

const updateCountKey = "update_count"

// NewSQLiteStore creates an in-memory store.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreWithDSN(":memory:")
}

// NewSQLiteStoreWithDSN creates a store with a specific data source name.
// Use ":memory:" for in-memory or a file path for persistent storage.
func NewSQLiteStoreWithDSN(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// OpenReadOnly opens an existing database file without creating or
// changing anything in it.
func OpenReadOnly(path string) (*SQLiteStore, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dsn := (&url.URL{Scheme: "file", OmitHost: true, Path: filepath.ToSlash(abs), RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", tagger.ErrDecode, path, err)
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveTagger replaces the stored model with t.
func (s *SQLiteStore) SaveTagger(t *tagger.Tagger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := t.Snapshot()
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, table := range tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES (?, ?)`,
		updateCountKey, strconv.Itoa(snap.Model.UpdateCount)); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}

	err = insertAll(tx, `INSERT INTO stamps (pair, iteration) VALUES (?, ?)`, len(snap.Model.Stamps),
		func(i int) []any { return []any{snap.Model.Stamps[i].Pair, snap.Model.Stamps[i].Iteration} })
	if err != nil {
		return fmt.Errorf("insert stamps: %w", err)
	}

	var cells [][]any
	for _, fw := range snap.Model.Weights {
		for _, tw := range fw.Weights {
			cells = append(cells, []any{fw.Feature, tw.Tag, tw.Weight})
		}
	}
	err = insertAll(tx, `INSERT INTO weights (feature, tag, weight) VALUES (?, ?, ?)`, len(cells),
		func(i int) []any { return cells[i] })
	if err != nil {
		return fmt.Errorf("insert weights: %w", err)
	}

	err = insertAll(tx, `INSERT INTO totals (pair, total) VALUES (?, ?)`, len(snap.Model.Totals),
		func(i int) []any { return []any{snap.Model.Totals[i].Pair, snap.Model.Totals[i].Total} })
	if err != nil {
		return fmt.Errorf("insert totals: %w", err)
	}

	err = insertAll(tx, `INSERT INTO singletons (word, tag) VALUES (?, ?)`, len(snap.Singletons),
		func(i int) []any { return []any{snap.Singletons[i].Word, snap.Singletons[i].Tag} })
	if err != nil {
		return fmt.Errorf("insert singletons: %w", err)
	}

	stats := snap.Statistics
	err = insertAll(tx, `INSERT INTO tags (tag) VALUES (?)`, len(stats.UniqueTags),
		func(i int) []any { return []any{stats.UniqueTags[i]} })
	if err != nil {
		return fmt.Errorf("insert tags: %w", err)
	}
	err = insertAll(tx, `INSERT INTO words (word) VALUES (?)`, len(stats.UniqueWords),
		func(i int) []any { return []any{stats.UniqueWords[i]} })
	if err != nil {
		return fmt.Errorf("insert words: %w", err)
	}

	var freqs [][]any
	for _, wf := range stats.Freqs {
		for _, tc := range wf.Counts {
			freqs = append(freqs, []any{wf.Word, tc.Tag, tc.Count})
		}
	}
	err = insertAll(tx, `INSERT INTO freqs (word, tag, count) VALUES (?, ?, ?)`, len(freqs),
		func(i int) []any { return freqs[i] })
	if err != nil {
		return fmt.Errorf("insert freqs: %w", err)
	}

	return tx.Commit()
}

func insertAll(tx *sql.Tx, query string, n int, row func(i int) []any) error {
	stmt, err := tx.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i := range n {
		if _, err := stmt.Exec(row(i)...); err != nil {
			return err
		}
	}
	return nil
}

// LoadTagger reads the stored model. Missing or corrupt rows are reported
// as tagger.ErrDecode.
func (s *SQLiteStore) LoadTagger() (*tagger.Tagger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'meta'`).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", tagger.ErrDecode, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: not a model database", tagger.ErrDecode)
	}

	var value string
	err = s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, updateCountKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no model stored", tagger.ErrDecode)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query meta: %v", tagger.ErrDecode, err)
	}
	updates, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("%w: update count %q", tagger.ErrDecode, value)
	}

	snap := &tagger.Snapshot{Model: &perceptron.Snapshot{UpdateCount: updates}}

	err = queryEach(s.db, `SELECT pair, iteration FROM stamps ORDER BY pair`, func(rows *sql.Rows) error {
		var st perceptron.Stamp
		if err := rows.Scan(&st.Pair, &st.Iteration); err != nil {
			return err
		}
		snap.Model.Stamps = append(snap.Model.Stamps, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: stamps: %v", tagger.ErrDecode, err)
	}

	err = queryEach(s.db, `SELECT feature, tag, weight FROM weights ORDER BY feature, tag`, func(rows *sql.Rows) error {
		var feat string
		var tw perceptron.TagWeight
		if err := rows.Scan(&feat, &tw.Tag, &tw.Weight); err != nil {
			return err
		}
		ws := snap.Model.Weights
		if n := len(ws); n > 0 && ws[n-1].Feature == feat {
			ws[n-1].Weights = append(ws[n-1].Weights, tw)
		} else {
			snap.Model.Weights = append(ws, perceptron.FeatureWeights{Feature: feat, Weights: []perceptron.TagWeight{tw}})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: weights: %v", tagger.ErrDecode, err)
	}

	err = queryEach(s.db, `SELECT pair, total FROM totals ORDER BY pair`, func(rows *sql.Rows) error {
		var pt perceptron.PairTotal
		if err := rows.Scan(&pt.Pair, &pt.Total); err != nil {
			return err
		}
		snap.Model.Totals = append(snap.Model.Totals, pt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: totals: %v", tagger.ErrDecode, err)
	}

	err = queryEach(s.db, `SELECT word, tag FROM singletons ORDER BY word`, func(rows *sql.Rows) error {
		var wt tagger.WordTag
		if err := rows.Scan(&wt.Word, &wt.Tag); err != nil {
			return err
		}
		snap.Singletons = append(snap.Singletons, wt)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: singletons: %v", tagger.ErrDecode, err)
	}

	if err := loadStatistics(s.db, &snap.Statistics); err != nil {
		return nil, fmt.Errorf("%w: statistics: %v", tagger.ErrDecode, err)
	}

	return tagger.FromSnapshot(snap)
}

func loadStatistics(db *sql.DB, stats *tagger.StatisticsSnapshot) error {
	err := queryEach(db, `SELECT tag FROM tags ORDER BY tag`, func(rows *sql.Rows) error {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return err
		}
		stats.UniqueTags = append(stats.UniqueTags, tag)
		return nil
	})
	if err != nil {
		return err
	}

	err = queryEach(db, `SELECT word FROM words ORDER BY word`, func(rows *sql.Rows) error {
		var word string
		if err := rows.Scan(&word); err != nil {
			return err
		}
		stats.UniqueWords = append(stats.UniqueWords, word)
		return nil
	})
	if err != nil {
		return err
	}

	return queryEach(db, `SELECT word, tag, count FROM freqs ORDER BY word, tag`, func(rows *sql.Rows) error {
		var word string
		var tc tagger.TagCount
		if err := rows.Scan(&word, &tc.Tag, &tc.Count); err != nil {
			return err
		}
		fs := stats.Freqs
		if n := len(fs); n > 0 && fs[n-1].Word == word {
			fs[n-1].Counts = append(fs[n-1].Counts, tc)
		} else {
			stats.Freqs = append(fs, tagger.WordFreqs{Word: word, Counts: []tagger.TagCount{tc}})
		}
		return nil
	})
}

func queryEach(db *sql.DB, query string, scan func(*sql.Rows) error) error {
	rows, err := db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SaveModel writes t to the SQLite database at path.
func SaveModel(t *tagger.Tagger, path string) error {
	s, err := NewSQLiteStoreWithDSN(path)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.SaveTagger(t)
}

// LoadModel reads a tagger from the SQLite database at path. The file is
// opened read-only.
func LoadModel(path string) (*tagger.Tagger, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	s, err := OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.LoadTagger()
}
