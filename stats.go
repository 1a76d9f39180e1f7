package postag

import (
	"sort"

	"github.com/happyhackingspace/postag/internal/storage"
	"github.com/happyhackingspace/postag/tagger"
)

// AmbiguousWord is a word seen with more than one tag.
type AmbiguousWord struct {
	Word   string
	Total  int
	Counts []tagger.TagCount // most frequent first
}

// CorpusReport summarizes a gold corpus.
type CorpusReport struct {
	Sentences int
	Tokens    int
	Words     int // distinct raw words
	Tags      int

	NormalizedWords int
	Singletons      int
	Ambiguous       []AmbiguousWord // most frequent first
}

// Analyze counts corpus statistics. Singletons are derived as in training
// with MinCount and Ratio from config. At most top ambiguous words are
// reported.
func Analyze(sentences []tagger.Sentence, config *TrainConfig, top int) *CorpusReport {
	cfg := config.orDefault()
	sum := storage.Summarize(sentences)
	report := &CorpusReport{
		Sentences: sum.Sentences,
		Tokens:    sum.Tokens,
		Words:     sum.Words,
		Tags:      sum.Tags,
	}

	stats := tagger.NewStatistics()
	for _, sent := range sentences {
		for _, tok := range sent {
			stats.Add(tagger.Normalize(tok.Word), tok.Tag)
		}
	}
	words := stats.Words()
	report.NormalizedWords = len(words)
	report.Singletons = len(stats.Singletons(cfg.MinCount, cfg.Ratio))

	for _, w := range words {
		counts := stats.Counts(w)
		if len(counts) < 2 {
			continue
		}
		aw := AmbiguousWord{Word: w, Total: stats.Total(w)}
		for tag, n := range counts {
			aw.Counts = append(aw.Counts, tagger.TagCount{Tag: tag, Count: n})
		}
		sort.Slice(aw.Counts, func(i, j int) bool {
			if aw.Counts[i].Count != aw.Counts[j].Count {
				return aw.Counts[i].Count > aw.Counts[j].Count
			}
			return aw.Counts[i].Tag < aw.Counts[j].Tag
		})
		report.Ambiguous = append(report.Ambiguous, aw)
	}
	sort.SliceStable(report.Ambiguous, func(i, j int) bool {
		return report.Ambiguous[i].Total > report.Ambiguous[j].Total
	})
	if top >= 0 && len(report.Ambiguous) > top {
		report.Ambiguous = report.Ambiguous[:top]
	}
	return report
}
