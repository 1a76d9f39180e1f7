package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/postag"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var flags corpusFlags

	cmd := &cobra.Command{
		Use:   "evaluate <corpus>",
		Short: "Evaluate tagging accuracy via cross-validation",
		Args:  cobra.ExactArgs(1),
		Example: `  postag evaluate data --cv 10
  postag evaluate ftb.conllx --cv 5 --iterations 5 --max-sentences 20000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			slog.Info("Evaluating", "folds", cfg.Folds, "corpus", args[0])
			start := time.Now()
			result, err := postag.Evaluate(args[0], &postag.EvalConfig{
				TrainConfig: *trainConfig(cfg),
				Folds:       cfg.Folds,
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			out := cmd.OutOrStdout()
			for i, acc := range result.FoldAccuracies {
				fmt.Fprintf(out, "Fold %2d accuracy: %.2f%%\n", i+1, acc*100)
			}
			fmt.Fprintf(out, "Mean fold accuracy: %.2f%% (std %.2f%%)\n",
				result.MeanAccuracy*100, result.StdAccuracy*100)
			printScore(out, result.Score)
			printConfusionMatrix(out, result.Confusion, result.Classes)
			printClassReport(out, result.Confusion, result.Classes, result.Precision, result.Recall, result.F1)
			return nil
		},
	}

	flags.register(cmd, true, true)
	return cmd
}

func printScore(out io.Writer, s postag.Score) {
	fmt.Fprintf(out, "Tag accuracy: %.2f%% (%d/%d)\n", s.Accuracy*100, s.Correct, s.Total)
	fmt.Fprintf(out, "Sentence accuracy: %.2f%% (%d/%d)\n",
		s.SentenceAccuracy*100, s.SentenceCorrect, s.SentenceTotal)
	fmt.Fprintf(out, "Macro F1: %.1f%%  Weighted F1: %.1f%%\n", s.MacroF1*100, s.WeightedF1*100)
	if s.Unknowns > 0 {
		fmt.Fprintf(out, "Unknown predictions: %d %v\n", s.Unknowns, s.UnknownTags)
	}
}

func printClassReport(out io.Writer, confusion map[string]map[string]int, classes []string, precision, recall, f1 map[string]float64) {
	fmt.Fprintf(out, "\nPer-tag metrics:\n")
	fmt.Fprintf(out, "%8s  %6s  %6s  %6s  %7s\n", "tag", "prec", "recall", "f1", "support")
	for _, cls := range classes {
		support := 0
		for _, v := range confusion[cls] {
			support += v
		}
		fmt.Fprintf(out, "%8s  %5.1f%%  %5.1f%%  %5.1f%%  %7d\n",
			cls, precision[cls]*100, recall[cls]*100, f1[cls]*100, support)
	}
}

func printConfusionMatrix(out io.Writer, confusion map[string]map[string]int, classes []string) {
	if len(confusion) == 0 {
		return
	}
	classes = append([]string(nil), classes...)

	sort.SliceStable(classes, func(i, j int) bool {
		ti, tj := 0, 0
		for _, v := range confusion[classes[i]] {
			ti += v
		}
		for _, v := range confusion[classes[j]] {
			tj += v
		}
		return ti > tj
	})

	fmt.Fprintf(out, "\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Fprintf(out, "%8s", "")
	for _, c := range classes {
		fmt.Fprintf(out, " %5s", truncate(c, 5))
	}
	fmt.Fprintf(out, "  total  acc%%\n")

	for _, trueClass := range classes {
		fmt.Fprintf(out, "%8s", truncate(trueClass, 8))
		total := 0
		correct := 0
		for _, predClass := range classes {
			count := confusion[trueClass][predClass]
			total += count
			if trueClass == predClass {
				correct = count
			}
			if count == 0 {
				fmt.Fprintf(out, " %5s", ".")
			} else {
				fmt.Fprintf(out, " %5d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(correct) / float64(total) * 100
		}
		fmt.Fprintf(out, "  %5d %5.1f\n", total, acc)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
