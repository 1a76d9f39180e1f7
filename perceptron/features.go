package perceptron

import "strings"

// Synthetic context padding. Two markers on each side keep i-2..i+2 in range.
const (
	Start1 = "-START-"
	Start2 = "-START2-"
	End1   = "-END-"
	End2   = "-END2-"
)

// Features is a sparse feature bag: feature name -> contribution.
// Every template contributes 1; duplicates collapse.
type Features map[string]float64

// Context pads words with the start and end markers. Word i of the sentence
// ends up at index i+2.
func Context(words []string) []string {
	ctx := make([]string, len(words)+4)
	ctx[0] = Start1
	ctx[1] = Start2
	copy(ctx[2:], words)
	ctx[len(ctx)-2] = End1
	ctx[len(ctx)-1] = End2
	return ctx
}

// Extract builds the features for the word at ctx[i], given the two previous
// tags. i must satisfy 2 <= i < len(ctx)-2.
func Extract(i int, ctx []string, prev1, prev2 string) Features {
	word := ctx[i]
	prev, next := ctx[i-1], ctx[i+1]

	f := make(Features, 14)
	f.add("bias")
	f.add("i suffix", suffix(word))
	f.add("i pref1", prefix(word))
	f.add("i-1 tag", prev1)
	f.add("i-2 tag", prev2)
	f.add("i-1 tag+i-2 tag", prev1, prev2)
	f.add("i word", word)
	f.add("i-1 tag+i word", prev1, word)
	f.add("i-1 word", prev)
	f.add("i-1 suffix", suffix(prev))
	f.add("i-2 word", ctx[i-2])
	f.add("i+1 word", next)
	f.add("i+1 suffix", suffix(next))
	f.add("i+2 word", ctx[i+2])
	return f
}

// add joins the template name and its values with spaces. The template name
// always comes first, so values from different templates never collide.
func (f Features) add(parts ...string) {
	f[strings.Join(parts, " ")] = 1
}

func suffix(word string) string {
	r := []rune(word)
	if len(r) <= 3 {
		return word
	}
	return string(r[len(r)-3:])
}

func prefix(word string) string {
	for _, r := range word {
		return string(r)
	}
	return ""
}
