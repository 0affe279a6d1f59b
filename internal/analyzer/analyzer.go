package analyzer

import (
	"sort"
	"strings"
	"unicode"
)

// TopN is the number of words kept for a book.
const TopN = 10

// WordCount is a word and the number of times it occurs in a text.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Clean drops every rune that is not an ASCII letter or whitespace and lower-cases the rest.
func Clean(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, text)
}

// Tokens returns the cleaned words of text in the order they appear.
func Tokens(text string) []string {
	return strings.Fields(Clean(text))
}

// Analyze returns the TopN most frequent words of text.
func Analyze(text string) []WordCount {
	return AnalyzeN(text, TopN)
}

// AnalyzeN returns up to n words of text ordered by descending count.
// Words with equal counts keep the order in which they were first seen.
func AnalyzeN(text string, n int) []WordCount {
	counts := count(Tokens(text))

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	if n < 0 {
		n = 0
	}
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// count tallies tokens, keeping entries in first-seen order.
func count(tokens []string) []WordCount {
	index := make(map[string]int, len(tokens)/4)
	out := make([]WordCount, 0, len(tokens)/4)
	for _, tok := range tokens {
		if i, ok := index[tok]; ok {
			out[i].Count++
			continue
		}
		index[tok] = len(out)
		out = append(out, WordCount{Word: tok, Count: 1})
	}
	return out
}
