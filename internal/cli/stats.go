package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/postag"
)

func (c *CLI) newStatsCommand() *cobra.Command {
	var top int
	var flags corpusFlags

	cmd := &cobra.Command{
		Use:   "stats <corpus>",
		Short: "Show corpus statistics",
		Args:  cobra.ExactArgs(1),
		Example: `  postag stats data
  postag stats ftb.conllx --top 20 --min-count 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			tc := trainConfig(cfg)
			sentences, err := postag.ReadCorpus(args[0], tc)
			if err != nil {
				return err
			}
			r := postag.Analyze(sentences, tc, top)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sentences:        %d\n", r.Sentences)
			fmt.Fprintf(out, "Tokens:           %d\n", r.Tokens)
			fmt.Fprintf(out, "Distinct words:   %d (%d normalized)\n", r.Words, r.NormalizedWords)
			fmt.Fprintf(out, "Distinct tags:    %d\n", r.Tags)
			fmt.Fprintf(out, "Singleton words:  %d (min count %d, ratio %.2f)\n", r.Singletons, tc.MinCount, tc.Ratio)
			if len(r.Ambiguous) > 0 {
				fmt.Fprintf(out, "\nMost frequent ambiguous words:\n")
				for _, aw := range r.Ambiguous {
					parts := make([]string, len(aw.Counts))
					for i, cnt := range aw.Counts {
						parts[i] = fmt.Sprintf("%s:%d", cnt.Tag, cnt.Count)
					}
					fmt.Fprintf(out, "%16s %7d  %s\n", aw.Word, aw.Total, strings.Join(parts, " "))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Number of ambiguous words to list")
	flags.register(cmd, false, false)
	return cmd
}
