package tagger

import (
	"strconv"
	"strings"
)

// Replacement tokens for four digit numerals.
const (
	YearToken  = "!YEAR"
	DigitToken = "!DIGIT"
)

// Normalize lowercases a word. Four digit numerals become YearToken when
// they fall in 1800-2100 and DigitToken otherwise.
func Normalize(word string) string {
	if n, ok := fourDigits(word); ok {
		if n >= 1800 && n <= 2100 {
			return YearToken
		}
		return DigitToken
	}
	return strings.ToLower(word)
}

// NormalizeAll normalizes every word into a new slice.
func NormalizeAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = Normalize(w)
	}
	return out
}

func fourDigits(word string) (int, bool) {
	if len(word) != 4 {
		return 0, false
	}
	for i := 0; i < len(word); i++ {
		if word[i] < '0' || word[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(word)
	return n, err == nil
}
