package postag

import (
	"sort"
	"time"

	"github.com/happyhackingspace/postag/perceptron"
	"github.com/happyhackingspace/postag/tagger"
)

// Score holds tagging accuracy against gold tags.
type Score struct {
	Accuracy float64
	Correct  int
	Total    int

	SentenceAccuracy float64
	SentenceCorrect  int
	SentenceTotal    int

	// Unknowns counts tokens predicted as perceptron.Unknown, UnknownTags
	// their gold tags.
	Unknowns    int
	UnknownTags map[string]int

	Confusion  map[string]map[string]int // gold -> predicted -> count
	Classes    []string
	Precision  map[string]float64
	Recall     map[string]float64
	F1         map[string]float64
	MacroF1    float64
	WeightedF1 float64
}

type scorer struct {
	s Score
}

func newScorer() *scorer {
	return &scorer{s: Score{
		UnknownTags: make(map[string]int),
		Confusion:   make(map[string]map[string]int),
	}}
}

// add compares one predicted sentence with its gold tags.
func (sc *scorer) add(gold, pred tagger.Sentence) {
	allCorrect := true
	for i, tok := range gold {
		got := ""
		if i < len(pred) {
			got = pred[i].Tag
		}
		row, ok := sc.s.Confusion[tok.Tag]
		if !ok {
			row = make(map[string]int)
			sc.s.Confusion[tok.Tag] = row
		}
		row[got]++
		if got == tok.Tag {
			sc.s.Correct++
		} else {
			allCorrect = false
			if got == perceptron.Unknown {
				sc.s.Unknowns++
				sc.s.UnknownTags[tok.Tag]++
			}
		}
		sc.s.Total++
	}
	if allCorrect {
		sc.s.SentenceCorrect++
	}
	sc.s.SentenceTotal++
}

// score finalizes ratios and per-class metrics.
func (sc *scorer) score() Score {
	s := sc.s
	if s.Total > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Total)
	}
	if s.SentenceTotal > 0 {
		s.SentenceAccuracy = float64(s.SentenceCorrect) / float64(s.SentenceTotal)
	}

	seen := make(map[string]bool)
	predicted := make(map[string]int)
	for gold, row := range s.Confusion {
		seen[gold] = true
		for pred, n := range row {
			seen[pred] = true
			predicted[pred] += n
		}
	}
	s.Classes = make([]string, 0, len(seen))
	for c := range seen {
		s.Classes = append(s.Classes, c)
	}
	sort.Strings(s.Classes)

	s.Precision = make(map[string]float64, len(s.Classes))
	s.Recall = make(map[string]float64, len(s.Classes))
	s.F1 = make(map[string]float64, len(s.Classes))
	goldClasses := 0
	for _, c := range s.Classes {
		tp := s.Confusion[c][c]
		support := 0
		for _, n := range s.Confusion[c] {
			support += n
		}
		var p, r, f float64
		if predicted[c] > 0 {
			p = float64(tp) / float64(predicted[c])
		}
		if support > 0 {
			r = float64(tp) / float64(support)
		}
		if p+r > 0 {
			f = 2 * p * r / (p + r)
		}
		s.Precision[c], s.Recall[c], s.F1[c] = p, r, f
		if support > 0 {
			goldClasses++
			s.MacroF1 += f
			s.WeightedF1 += f * float64(support)
		}
	}
	if goldClasses > 0 {
		s.MacroF1 /= float64(goldClasses)
	}
	if s.Total > 0 {
		s.WeightedF1 /= float64(s.Total)
	}
	return s
}

// TestResult holds the accuracy of a trained tagger on a held-out corpus.
type TestResult struct {
	Score
	Words             int
	AvgTagTime        time.Duration // per sentence
	AvgSentenceLength float64
}

// Test tags every sentence of a gold corpus and compares the tags.
func (t *Tagger) Test(sentences []tagger.Sentence) (*TestResult, error) {
	if t.t == nil {
		return nil, ErrNotInitialized
	}
	sc := newScorer()
	res := &TestResult{}
	var elapsed time.Duration
	for _, gold := range sentences {
		if len(gold) == 0 {
			continue
		}
		start := time.Now()
		pred := t.t.Tag(gold.Words())
		elapsed += time.Since(start)
		sc.add(gold, pred)
		res.Words += len(gold)
	}
	res.Score = sc.score()
	if n := res.SentenceTotal; n > 0 {
		res.AvgTagTime = elapsed / time.Duration(n)
		res.AvgSentenceLength = float64(res.Words) / float64(n)
	}
	return res, nil
}

// TestFile reads a gold corpus and tests the tagger on it.
func (t *Tagger) TestFile(path string, config *TrainConfig) (*TestResult, error) {
	sentences, err := ReadCorpus(path, config)
	if err != nil {
		return nil, err
	}
	return t.Test(sentences)
}
