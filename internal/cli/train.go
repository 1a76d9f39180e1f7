package cli

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/postag"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var dataFolder string
	var sample string
	var flags corpusFlags

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a tagger on a gold-tagged corpus",
		Args:  cobra.ExactArgs(1),
		Example: `  postag train model.json --data-folder data
  postag train model.db --data-folder ftb.conllx --iterations 5
  postag train model.json --config postag.yaml --sample "Heimo on heimonsa päällikkö ."
  postag train model.json -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			modelPath := args[0]
			slog.Info("Training tagger", "data-folder", dataFolder, "output", modelPath,
				"iterations", cfg.Iterations, "format", cfg.Format)
			start := time.Now()
			t, err := postag.Train(dataFolder, trainConfig(cfg))
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))
			if err := t.Save(modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath)

			if sample != "" {
				tokens, err := t.Tag(sample)
				if err != nil {
					return err
				}
				slog.Info("Sample sentence", "tagged", formatTokens(tokens))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFolder, "data-folder", "data", "Path to a corpus file or folder")
	cmd.Flags().StringVar(&sample, "sample", "", "Sentence to tag after training")
	flags.register(cmd, true, false)
	return cmd
}

// formatTokens renders tokens as "word/TAG" separated by spaces.
func formatTokens(tokens []postag.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Word + "/" + tok.Tag
	}
	return strings.Join(parts, " ")
}
