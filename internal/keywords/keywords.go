// Package keywords extracts a small number of representative terms from an
// article's title and content.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// MaxKeywords is the number of keywords Extract returns at most.
const MaxKeywords = 2

// minKeywordLen is exclusive: a token must be longer than this to count.
const minKeywordLen = 3

var wordRe = regexp.MustCompile(`[a-z0-9]+`)

// stopwords holds common words that never make a keyword.
// Built once; never written after init.
var stopwords = func() map[string]struct{} {
	words := []string{
		// articles
		"a", "an", "the",
		// pronouns
		"i", "my", "we", "our", "you", "your", "he", "his", "she", "her",
		"it", "its", "they", "them", "their", "this", "that", "these",
		"those", "who", "which", "what",
		// conjunctions and prepositions
		"and", "or", "but", "so", "for", "of", "in", "on", "at", "to", "by",
		"with", "from", "into", "about", "after", "than", "then", "when",
		"where", "while",
		// auxiliary verbs
		"is", "are", "was", "were", "be", "been", "has", "have", "had", "do",
		"does", "did", "will", "would", "can", "could", "may", "should",
		// filler
		"also", "just", "very", "said", "says", "there",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// IsStopword reports whether token is a common word excluded from ranking.
// The token must already be lowercase.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}

// Tokenize lowercases text and splits it into alphanumeric runs.
func Tokenize(text string) []string {
	tokens := wordRe.FindAllString(strings.ToLower(text), -1)
	if tokens == nil {
		return []string{}
	}
	return tokens
}

func isNumeric(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); i++ {
		if token[i] < '0' || token[i] > '9' {
			return false
		}
	}
	return true
}

func qualifies(token string) bool {
	return len(token) > minKeywordLen && !IsStopword(token) && !isNumeric(token)
}

// Rank counts qualifying tokens and returns at most n of them ordered by
// descending count. Equal counts keep the order of first appearance.
func Rank(tokens []string, n int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, tok := range tokens {
		if !qualifies(tok) {
			continue
		}
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if n < 0 {
		n = 0
	}
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// Extract returns up to MaxKeywords keywords for an article. An empty
// content stands for an article without a body.
func Extract(title, content string) []string {
	return Rank(Tokenize(title+" "+content), MaxKeywords)
}
