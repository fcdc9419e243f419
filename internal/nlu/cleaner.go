package nlu

import (
	"strconv"
	"strings"

	"github.com/avrorahistoria/lecture-skill/internal/morph"
)

// masked replaces negated tokens instead of deleting them, so positions
// of later tokens stay valid for subsequent span lookups.
const masked = "*"

func isNegation(token string) bool { return token == "не" || token == "ни" }

// CleanUtterance prepares a raw utterance for matching against the
// current answer options:
//
//  1. words shared by EVERY option are stripped, so a word common to all
//     answers ("битва" in "битва при ...") is evidence for none of them;
//  2. a run of option words directly preceded by "не"/"ни" is masked,
//     so a negated option ("точно не бородино") is not matched as
//     affirmed — and the same for negated ordinal digits ("не 1").
//
// Only single-token immediate-predecessor negation is detected; negation
// scope over longer phrases is a known limitation. The output is stable:
// cleaning an already-cleaned utterance changes nothing.
func CleanUtterance(a morph.Analyzer, raw string, answers []Candidate) string {
	utter := NormalizeList(a, Tokenize(raw))
	if len(utter) == 0 {
		return ""
	}

	sources := make([][]string, len(answers))
	for i, cand := range answers {
		sources[i] = dedup(NormalizeList(a, Tokenize(cand.Text)))
	}

	// Common-word suppression only makes sense with something to share:
	// with a single option the intersection would be the option itself.
	if len(answers) > 1 {
		common := intersectAll(sources)
		if len(common) > 0 {
			utter = without(utter, common)
			for i := range sources {
				sources[i] = without(sources[i], common)
			}
		}
	}

	skip := make(map[int]struct{})
	for _, source := range sources {
		set := toSet(source)
		for _, span := range findOccurrences(utter, set, skip) {
			if span.start > 0 && isNegation(utter[span.start-1]) {
				for i := span.start; i < span.end; i++ {
					utter[i] = masked
				}
			}
		}
	}

	// Negated ordinal digits are masked independently of text spans.
	for _, cand := range answers {
		digit := strconv.Itoa(cand.Ordinal)
		for i := 1; i < len(utter); i++ {
			if utter[i] == digit && isNegation(utter[i-1]) {
				utter[i] = masked
			}
		}
	}

	return strings.Join(utter, " ")
}

type span struct{ start, end int } // [start, end)

// findOccurrences locates consecutive-token runs in utter whose tokens
// all belong to the candidate's word set. Tokens already claimed by an
// earlier candidate (via skip) are not claimed twice.
func findOccurrences(utter []string, words map[string]struct{}, skip map[int]struct{}) []span {
	var out []span
	i := 0
	for i < len(utter) {
		if _, taken := skip[i]; taken {
			i++
			continue
		}
		if _, ok := words[utter[i]]; !ok {
			i++
			continue
		}
		start := i
		for i < len(utter) {
			if _, taken := skip[i]; taken {
				break
			}
			if _, ok := words[utter[i]]; !ok {
				break
			}
			skip[i] = struct{}{}
			i++
		}
		out = append(out, span{start: start, end: i})
	}
	return out
}

func dedup(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func toSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		out[t] = struct{}{}
	}
	return out
}

// intersectAll returns the tokens present in every source.
func intersectAll(sources [][]string) map[string]struct{} {
	if len(sources) == 0 {
		return nil
	}
	common := toSet(sources[0])
	for _, source := range sources[1:] {
		set := toSet(source)
		for w := range common {
			if _, ok := set[w]; !ok {
				delete(common, w)
			}
		}
	}
	return common
}

func without(tokens []string, drop map[string]struct{}) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
