package cli

import (
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/postag"
	"github.com/happyhackingspace/postag/internal/config"
)

// corpusFlags binds the settings shared by the corpus commands. Values come
// from the built-in defaults, then the --config file, then flags that were
// set explicitly.
type corpusFlags struct {
	configPath   string
	iterations   int
	minCount     int
	ratio        float64
	seed         uint64
	folds        int
	format       string
	maxSentences int
	dedup        bool
}

func (f *corpusFlags) register(cmd *cobra.Command, training, folds bool) {
	def := config.Default()
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "YAML file with default settings")
	fs.StringVar(&f.format, "format", def.Format, "Corpus format: auto, pairs or conll")
	fs.IntVar(&f.maxSentences, "max-sentences", def.MaxSentences, "Read at most this many sentences (0 = all)")
	fs.BoolVar(&f.dedup, "dedup", def.Dedup, "Drop repeated sentences")
	fs.IntVar(&f.minCount, "min-count", def.MinCount, "Singleton words must be seen more often than this")
	fs.Float64Var(&f.ratio, "ratio", def.Ratio, "Share of occurrences a singleton's tag must cover")
	if training {
		fs.IntVar(&f.iterations, "iterations", def.Iterations, "Training iterations")
		fs.Uint64Var(&f.seed, "seed", def.Seed, "Seed of the corpus shuffle")
	}
	if folds {
		fs.IntVar(&f.folds, "cv", def.Folds, "Number of cross-validation folds")
	}
}

// resolve merges defaults, the config file and explicitly set flags.
func (f *corpusFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("iterations") {
		cfg.Iterations = f.iterations
	}
	if changed("min-count") {
		cfg.MinCount = f.minCount
	}
	if changed("ratio") {
		cfg.Ratio = f.ratio
	}
	if changed("seed") {
		cfg.Seed = f.seed
	}
	if changed("cv") {
		cfg.Folds = f.folds
	}
	if changed("format") {
		cfg.Format = f.format
	}
	if changed("max-sentences") {
		cfg.MaxSentences = f.maxSentences
	}
	if changed("dedup") {
		cfg.Dedup = f.dedup
	}
	return cfg, cfg.Validate()
}

func trainConfig(cfg config.Config) *postag.TrainConfig {
	tc := cfg.TaggerConfig()
	return &postag.TrainConfig{
		Iterations:   tc.Iterations,
		MinCount:     tc.MinCount,
		Ratio:        tc.Ratio,
		Seed:         tc.Seed,
		Format:       string(cfg.CorpusFormat()),
		MaxSentences: cfg.IterOptions().MaxSentences,
		Dedup:        cfg.IterOptions().DropDuplicates,
	}
}
