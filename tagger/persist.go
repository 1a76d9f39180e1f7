package tagger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/happyhackingspace/postag/perceptron"
)

// ErrDecode is returned when a serialized model cannot be decoded.
var ErrDecode = errors.New("tagger: cannot decode model")

// WordTag is one entry of the singleton map.
type WordTag struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// TagCount is how often a word was seen with one tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// WordFreqs is the tag frequency row of one word.
type WordFreqs struct {
	Word   string     `json:"word"`
	Counts []TagCount `json:"counts"`
}

// StatisticsSnapshot is the serializable form of Statistics.
type StatisticsSnapshot struct {
	UniqueTags  []string    `json:"unique_tags"`
	UniqueWords []string    `json:"unique_words"`
	Freqs       []WordFreqs `json:"freqs"`
}

// Snapshot is the serializable state of a Tagger.
type Snapshot struct {
	Model      *perceptron.Snapshot `json:"model"`
	Singletons []WordTag            `json:"singletons"`
	Statistics StatisticsSnapshot   `json:"statistics"`
}

// Snapshot captures the tagger state. Lists are sorted.
func (t *Tagger) Snapshot() *Snapshot {
	s := &Snapshot{
		Model:      t.model.Snapshot(),
		Singletons: make([]WordTag, 0, len(t.singles)),
		Statistics: t.stats.Snapshot(),
	}
	for w, tag := range t.singles {
		s.Singletons = append(s.Singletons, WordTag{Word: w, Tag: tag})
	}
	sort.Slice(s.Singletons, func(i, j int) bool { return s.Singletons[i].Word < s.Singletons[j].Word })
	return s
}

// Snapshot captures the statistics. Lists are sorted.
func (s *Statistics) Snapshot() StatisticsSnapshot {
	snap := StatisticsSnapshot{
		UniqueTags:  s.Tags(),
		UniqueWords: s.Words(),
	}
	snap.Freqs = make([]WordFreqs, 0, len(snap.UniqueWords))
	for _, w := range snap.UniqueWords {
		row := s.counts[w]
		wf := WordFreqs{Word: w, Counts: make([]TagCount, 0, len(row))}
		for tag, c := range row {
			wf.Counts = append(wf.Counts, TagCount{Tag: tag, Count: c})
		}
		sort.Slice(wf.Counts, func(i, j int) bool { return wf.Counts[i].Tag < wf.Counts[j].Tag })
		snap.Freqs = append(snap.Freqs, wf)
	}
	return snap
}

// FromSnapshot rebuilds a tagger.
func FromSnapshot(s *Snapshot) (*Tagger, error) {
	if s.Model == nil {
		return nil, fmt.Errorf("%w: missing model", ErrDecode)
	}
	model, err := perceptron.FromSnapshot(s.Model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	t := &Tagger{
		model:   model,
		stats:   NewStatistics(),
		singles: make(map[string]string, len(s.Singletons)),
	}
	for _, wt := range s.Singletons {
		t.singles[wt.Word] = wt.Tag
	}
	for _, tag := range s.Statistics.UniqueTags {
		t.stats.tags[tag] = true
	}
	for _, wf := range s.Statistics.Freqs {
		for _, tc := range wf.Counts {
			t.stats.addN(wf.Word, tc.Tag, tc.Count)
		}
	}
	// Words without a frequency row still count as seen.
	for _, w := range s.Statistics.UniqueWords {
		if _, ok := t.stats.counts[w]; !ok {
			t.stats.counts[w] = make(map[string]int)
		}
	}
	return t, nil
}

// SaveModel serializes the tagger to JSON.
func SaveModel(t *Tagger, path string) error {
	data, err := json.MarshalIndent(t.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadModel deserializes a tagger from JSON.
func LoadModel(path string) (*Tagger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalModel(data)
}

// MarshalModel serializes the tagger to JSON bytes.
func MarshalModel(t *Tagger) ([]byte, error) {
	return json.Marshal(t.Snapshot())
}

// UnmarshalModel deserializes a tagger from JSON bytes.
func UnmarshalModel(data []byte) (*Tagger, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromSnapshot(&s)
}
