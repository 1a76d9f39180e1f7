package tagger

import "sort"

// Statistics counts how often each tag was seen for each word.
type Statistics struct {
	counts map[string]map[string]int // word -> tag -> count
	totals map[string]int            // word -> count
	tags   map[string]bool
}

// NewStatistics creates empty statistics.
func NewStatistics() *Statistics {
	return &Statistics{
		counts: make(map[string]map[string]int),
		totals: make(map[string]int),
		tags:   make(map[string]bool),
	}
}

// Add counts one occurrence of word with tag.
func (s *Statistics) Add(word, tag string) {
	s.addN(word, tag, 1)
}

func (s *Statistics) addN(word, tag string, n int) {
	row, ok := s.counts[word]
	if !ok {
		row = make(map[string]int)
		s.counts[word] = row
	}
	row[tag] += n
	s.totals[word] += n
	s.tags[tag] = true
}

// AddSentence counts every token of the sentence.
func (s *Statistics) AddSentence(sentence Sentence) {
	for _, tok := range sentence {
		s.Add(tok.Word, tok.Tag)
	}
}

// AddCorpus counts every token of every sentence.
func (s *Statistics) AddCorpus(sentences []Sentence) {
	for _, sent := range sentences {
		s.AddSentence(sent)
	}
}

// Words returns every observed word, sorted.
func (s *Statistics) Words() []string {
	words := make([]string, 0, len(s.counts))
	for w := range s.counts {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Tags returns every observed tag, sorted.
func (s *Statistics) Tags() []string {
	tags := make([]string, 0, len(s.tags))
	for t := range s.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Counts returns the tag counts of word. The map must not be modified.
func (s *Statistics) Counts(word string) map[string]int {
	return s.counts[word]
}

// Total returns how many times word was seen.
func (s *Statistics) Total(word string) int {
	return s.totals[word]
}

// Majority returns the most frequent tag of word, its count and the total
// count of the word. Ties go to the lexicographically smallest tag.
func (s *Statistics) Majority(word string) (tag string, count, total int) {
	for t, c := range s.counts[word] {
		if c > count || (c == count && t < tag) {
			tag, count = t, c
		}
	}
	return tag, count, s.totals[word]
}

// Singletons returns the words seen more than minCount times whose majority
// tag covers at least ratio of their occurrences.
func (s *Statistics) Singletons(minCount int, ratio float64) map[string]string {
	singles := make(map[string]string)
	for word := range s.counts {
		tag, count, total := s.Majority(word)
		if total > minCount && float64(count)/float64(total) >= ratio {
			singles[word] = tag
		}
	}
	return singles
}
