package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

func (c *CLI) newTestCommand() *cobra.Command {
	var modelPath string
	var flags corpusFlags

	cmd := &cobra.Command{
		Use:   "test <corpus>",
		Short: "Measure the accuracy of a trained model on a gold corpus",
		Args:  cobra.ExactArgs(1),
		Example: `  postag test ftb_test.conllx --model model.json
  postag test data/test --format pairs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			t, err := loadModel(modelPath)
			if err != nil {
				return err
			}
			slog.Info("Testing", "corpus", args[0])
			start := time.Now()
			res, err := t.TestFile(args[0], trainConfig(cfg))
			if err != nil {
				return err
			}
			slog.Debug("Test completed", "duration", time.Since(start))

			out := cmd.OutOrStdout()
			printScore(out, res.Score)
			fmt.Fprintf(out, "Words: %d  Avg sentence length: %.1f  Avg tag time: %s\n",
				res.Words, res.AvgSentenceLength, res.AvgTagTime)
			if c.verbose {
				printClassReport(out, res.Confusion, res.Classes, res.Precision, res.Recall, res.F1)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: auto-detect)")
	flags.register(cmd, false, false)
	return cmd
}
