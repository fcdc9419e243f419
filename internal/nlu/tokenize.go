// Package nlu resolves freeform user utterances against the currently
// displayed answer options: tokenization, base-form reduction,
// common-word suppression, negation masking and coincidence scoring.
package nlu

import (
	"regexp"
	"strings"

	"github.com/avrorahistoria/lecture-skill/internal/morph"
)

// Anything that is not a letter or a digit separates tokens. This also
// splits hyphenated compounds into separate tokens. The cleaner's mask
// character survives tokenization so cleaned text can be re-tokenized.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}*]+`)

// Tokenize lowercases text and splits it into tokens. Empty input yields
// an empty slice, never an error.
func Tokenize(text string) []string {
	clean := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	return strings.Fields(clean)
}

// NormalizeList reduces tokens to base forms, preserving order and
// duplicates. The order-preserving variant matters downstream: negation
// detection depends on positional adjacency.
func NormalizeList(a morph.Analyzer, tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if n := a.Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// NormalizeSet reduces tokens to a set of base forms.
func NormalizeSet(a morph.Analyzer, tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if n := a.Normalize(t); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}
