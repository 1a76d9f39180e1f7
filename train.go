package postag

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/happyhackingspace/postag/internal/storage"
	"github.com/happyhackingspace/postag/tagger"
)

// TrainConfig holds configuration for training. A zero Iterations or Ratio
// takes the default; the other fields are used as given, so start from
// DefaultTrainConfig to keep their defaults.
type TrainConfig struct {
	Iterations int
	MinCount   int
	Ratio      float64
	Seed       uint64

	Format       string // corpus format: auto, pairs or conll
	MaxSentences int    // 0 reads the whole corpus
	Dedup        bool   // drop repeated sentences
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() TrainConfig {
	tc := tagger.DefaultConfig()
	return TrainConfig{
		Iterations: tc.Iterations,
		MinCount:   tc.MinCount,
		Ratio:      tc.Ratio,
		Seed:       tc.Seed,
		Format:     string(storage.FormatAuto),
	}
}

func (c *TrainConfig) orDefault() TrainConfig {
	def := DefaultTrainConfig()
	if c == nil {
		return def
	}
	cfg := *c
	if cfg.Iterations == 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.Ratio == 0 {
		cfg.Ratio = def.Ratio
	}
	return cfg
}

func (c TrainConfig) taggerConfig() tagger.Config {
	tc := tagger.DefaultConfig()
	tc.Iterations = c.Iterations
	tc.MinCount = c.MinCount
	tc.Ratio = c.Ratio
	tc.Seed = c.Seed
	return tc
}

// ReadCorpus reads the gold-tagged sentences of a corpus file or folder.
func ReadCorpus(path string, config *TrainConfig) ([]tagger.Sentence, error) {
	cfg := config.orDefault()
	format, err := storage.ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("postag: %w", err)
	}
	opts := storage.DefaultIterOptions()
	opts.MaxSentences = cfg.MaxSentences
	opts.DropDuplicates = cfg.Dedup

	sentences, err := storage.NewStorage(path, format).IterSentences(opts)
	if err != nil {
		return nil, fmt.Errorf("postag: %w", err)
	}
	if len(sentences) == 0 {
		return nil, fmt.Errorf("postag: no sentences found in %s", path)
	}
	return sentences, nil
}

// Train trains a tagger on the corpus at dataPath.
func Train(dataPath string, config *TrainConfig) (*Tagger, error) {
	sentences, err := ReadCorpus(dataPath, config)
	if err != nil {
		return nil, err
	}
	slog.Info("Corpus loaded", "path", dataPath, "sentences", len(sentences))
	return TrainSentences(sentences, config)
}

// TrainSentences trains a tagger on gold-tagged sentences.
func TrainSentences(sentences []tagger.Sentence, config *TrainConfig) (*Tagger, error) {
	cfg := config.orDefault()
	t, _, err := tagger.Train(sentences, cfg.taggerConfig())
	if err != nil {
		return nil, fmt.Errorf("postag: %w", err)
	}
	return &Tagger{t: t}, nil
}

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	TrainConfig
	Folds int
}

// EvalResult holds cross-validation evaluation results.
type EvalResult struct {
	Score
	FoldAccuracies []float64
	MeanAccuracy   float64
	StdAccuracy    float64
}

// Evaluate runs k-fold cross-validation on the corpus at dataPath.
func Evaluate(dataPath string, config *EvalConfig) (*EvalResult, error) {
	var tc *TrainConfig
	if config != nil {
		tc = &config.TrainConfig
	}
	sentences, err := ReadCorpus(dataPath, tc)
	if err != nil {
		return nil, err
	}
	return EvaluateSentences(sentences, config)
}

// EvaluateSentences runs k-fold cross-validation. Folds are contiguous
// slices of the corpus; each is tagged by a model trained on the others.
func EvaluateSentences(sentences []tagger.Sentence, config *EvalConfig) (*EvalResult, error) {
	nFolds := 10
	var cfg TrainConfig
	if config != nil {
		if config.Folds > 0 {
			nFolds = config.Folds
		}
		cfg = config.TrainConfig.orDefault()
	} else {
		cfg = DefaultTrainConfig()
	}
	folds := kFold(len(sentences), nFolds)
	if len(folds) < 2 {
		return nil, fmt.Errorf("postag: need at least 2 sentences for cross-validation, got %d", len(sentences))
	}

	total := newScorer()
	result := &EvalResult{}
	for i, testIdx := range folds {
		testSet := makeTestSet(len(sentences), testIdx)
		var train []tagger.Sentence
		for j, sent := range sentences {
			if !testSet[j] {
				train = append(train, sent)
			}
		}

		t, _, err := tagger.Train(train, cfg.taggerConfig())
		if err != nil {
			return nil, fmt.Errorf("postag: fold %d: %w", i+1, err)
		}

		fold := newScorer()
		for _, idx := range testIdx {
			gold := sentences[idx]
			pred := t.Tag(gold.Words())
			fold.add(gold, pred)
			total.add(gold, pred)
		}
		acc := fold.score().Accuracy
		result.FoldAccuracies = append(result.FoldAccuracies, acc)
		slog.Info("Fold evaluated", "fold", i+1, "of", len(folds),
			"train", len(train), "test", len(testIdx), "accuracy", fmt.Sprintf("%.2f%%", acc*100))
	}

	result.Score = total.score()
	result.MeanAccuracy, result.StdAccuracy = stat.MeanStdDev(result.FoldAccuracies, nil)
	return result, nil
}

// kFold splits n items into at most k contiguous folds of near-equal size.
func kFold(n, k int) [][]int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	folds := make([][]int, k)
	start := 0
	for f := range k {
		size := n / k
		if f < n%k {
			size++
		}
		for i := start; i < start+size; i++ {
			folds[f] = append(folds[f], i)
		}
		start += size
	}
	return folds
}

func makeTestSet(n int, testIdx []int) []bool {
	set := make([]bool, n)
	for _, i := range testIdx {
		set[i] = true
	}
	return set
}
