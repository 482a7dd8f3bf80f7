package analyzer

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Tokenizer turns guideline passages, screening answers and user messages into
// lowercase terms for the hashing embedder. Negations such as "no" and "not"
// survive stopword removal since they flip the meaning of a symptom.
type Tokenizer struct {
	stem      bool
	stopwords map[string]struct{}
}

// NewTokenizer creates a Tokenizer. With useStemming, terms are reduced by the
// English Snowball stemmer so "sleeping" and "sleeps" share a feature.
func NewTokenizer(useStemming bool) *Tokenizer {
	return &Tokenizer{
		stem:      useStemming,
		stopwords: defaultStopwords(),
	}
}

// Tokenize splits text on anything that is not a letter, digit or underscore,
// then drops single characters and stopwords.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len([]rune(word)) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.stem {
			word = english.Stem(word, false)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// CountTokens estimates how many model tokens a packed context block uses.
// It is only logged, never used to truncate.
func (t *Tokenizer) CountTokens(text string) int {
	words := splitWords(text)
	if len(words) == 0 {
		return 0
	}
	// ~1.3 subword tokens per word
	return int(float64(len(words)) * 1.3)
}

func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// defaultStopwords holds English function words. "no", "not", "never" and
// "nothing" are absent so screening answers keep their polarity.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
