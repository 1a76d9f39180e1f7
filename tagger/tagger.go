// Package tagger trains and runs a greedy left-to-right part-of-speech tagger
// on top of the averaged perceptron.
package tagger

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/happyhackingspace/postag/perceptron"
)

// Token is a word with its tag. Tag is empty for untagged input.
type Token struct {
	Word string `json:"word"`
	Tag  string `json:"tag"`
}

// Sentence is an ordered sequence of tokens.
type Sentence []Token

// Words returns the words of the sentence.
func (s Sentence) Words() []string {
	words := make([]string, len(s))
	for i, tok := range s {
		words[i] = tok.Word
	}
	return words
}

// Tags returns the tags of the sentence.
func (s Sentence) Tags() []string {
	tags := make([]string, len(s))
	for i, tok := range s {
		tags[i] = tok.Tag
	}
	return tags
}

// Config holds training hyperparameters.
type Config struct {
	Iterations int     // training sweeps over the corpus
	MinCount   int     // a singleton word must be seen more often than this
	Ratio      float64 // share of occurrences its majority tag must cover
	Seed       uint64  // seed of the default shuffle

	// Shuffle reorders the corpus between iterations. Defaults to a
	// math/rand/v2 PCG source seeded with Seed.
	Shuffle func(n int, swap func(i, j int))
}

// DefaultConfig returns the default training config.
func DefaultConfig() Config {
	return Config{
		Iterations: 10,
		MinCount:   20,
		Ratio:      0.97,
		Seed:       1,
	}
}

// EpochStats reports how well the model did during one training iteration,
// before the updates of that iteration were applied.
type EpochStats struct {
	Iteration int
	Correct   int
	Guesses   int
}

// Accuracy returns Correct/Guesses.
func (e EpochStats) Accuracy() float64 {
	if e.Guesses == 0 {
		return 0
	}
	return float64(e.Correct) / float64(e.Guesses)
}

// history is the two-tag window preceding the current token. Training pushes
// gold tags into it, tagging pushes the tagger's own guesses.
type history struct {
	prev1, prev2 string
}

func newHistory() history {
	return history{prev1: perceptron.Start1, prev2: perceptron.Start2}
}

func (h *history) push(tag string) {
	h.prev2 = h.prev1
	h.prev1 = tag
}

// Tagger is a trained part-of-speech tagger.
type Tagger struct {
	model   *perceptron.Model
	stats   *Statistics
	singles map[string]string
}

// New creates an untrained tagger.
func New() *Tagger {
	return &Tagger{
		model:   perceptron.NewModel(),
		stats:   NewStatistics(),
		singles: make(map[string]string),
	}
}

// Model returns the underlying perceptron.
func (t *Tagger) Model() *perceptron.Model {
	return t.model
}

// Statistics returns the word/tag counts of the training corpus.
func (t *Tagger) Statistics() *Statistics {
	return t.stats
}

// Singletons returns the words that bypass the model and their fixed tag.
// The map must not be modified.
func (t *Tagger) Singletons() map[string]string {
	return t.singles
}

// Train trains a tagger on gold-tagged sentences. Words are normalized before
// they are counted or featurized. The input slice is not reordered.
func Train(sentences []Sentence, config Config) (*Tagger, []EpochStats, error) {
	if config.Iterations <= 0 {
		return nil, nil, fmt.Errorf("tagger: iterations must be positive, got %d", config.Iterations)
	}
	shuffle := config.Shuffle
	if shuffle == nil {
		rng := rand.New(rand.NewPCG(config.Seed, config.Seed))
		shuffle = rng.Shuffle
	}

	corpus := make([]Sentence, 0, len(sentences))
	for _, sent := range sentences {
		if len(sent) == 0 {
			continue
		}
		norm := make(Sentence, len(sent))
		for i, tok := range sent {
			norm[i] = Token{Word: Normalize(tok.Word), Tag: tok.Tag}
		}
		corpus = append(corpus, norm)
	}
	if len(corpus) == 0 {
		return nil, nil, fmt.Errorf("tagger: no training sentences")
	}

	t := New()
	t.stats.AddCorpus(corpus)
	t.singles = t.stats.Singletons(config.MinCount, config.Ratio)
	slog.Debug("Corpus statistics", "words", len(t.stats.counts), "tags", len(t.stats.tags), "singletons", len(t.singles))

	epochs := make([]EpochStats, 0, config.Iterations)
	for it := range config.Iterations {
		stats := EpochStats{Iteration: it}
		for _, sent := range corpus {
			stats.Correct += t.trainSentence(sent)
			stats.Guesses += len(sent)
		}
		shuffle(len(corpus), func(i, j int) { corpus[i], corpus[j] = corpus[j], corpus[i] })
		slog.Info("Training iteration", "iteration", it+1, "of", config.Iterations,
			"correct", stats.Correct, "guesses", stats.Guesses,
			"accuracy", fmt.Sprintf("%.2f%%", stats.Accuracy()*100))
		epochs = append(epochs, stats)
	}

	slog.Debug("Averaging weights", "updates", t.model.Updates(), "features", t.model.NumFeatures())
	if err := t.model.Average(); err != nil {
		return nil, nil, fmt.Errorf("tagger: %w", err)
	}
	return t, epochs, nil
}

// trainSentence runs predict/update over one normalized gold sentence and
// returns the number of correct guesses. The history always advances with the
// gold tag, never with the guess.
func (t *Tagger) trainSentence(sent Sentence) int {
	ctx := perceptron.Context(sent.Words())
	h := newHistory()
	correct := 0
	for i, tok := range sent {
		feats := perceptron.Extract(i+2, ctx, h.prev1, h.prev2)
		guess, _ := t.model.Predict(feats)
		if guess == tok.Tag {
			correct++
		}
		t.model.Update(tok.Tag, guess, feats)
		h.push(tok.Tag)
	}
	return correct
}

// Tag assigns a tag to every word, left to right. Known singleton words skip
// the model. Each assigned tag feeds the features of the next word.
// Returned tokens carry the normalized word.
func (t *Tagger) Tag(words []string) Sentence {
	norm := NormalizeAll(words)
	ctx := perceptron.Context(norm)
	h := newHistory()
	out := make(Sentence, len(norm))
	for i, word := range norm {
		tag, ok := t.singles[word]
		if !ok {
			tag, _ = t.model.Predict(perceptron.Extract(i+2, ctx, h.prev1, h.prev2))
		}
		out[i] = Token{Word: word, Tag: tag}
		h.push(tag)
	}
	return out
}

// TagText splits a sentence on whitespace and tags it.
func (t *Tagger) TagText(sentence string) Sentence {
	return t.Tag(strings.Fields(sentence))
}
