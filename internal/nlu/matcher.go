package nlu

import (
	"sort"
	"strconv"

	"github.com/avrorahistoria/lecture-skill/internal/morph"
)

// DefaultThreshold is the minimum coincidence score for a candidate to
// be considered a match.
const DefaultThreshold = 0.33

// Candidate is one displayed answer option, identified by its 1-based
// display ordinal.
type Candidate struct {
	Ordinal int
	Text    string
}

// Diff is one scored candidate match between the utterance and an
// answer option.
type Diff struct {
	Answer      string
	Ordinal     int
	Coincidence float64
}

// MatchByText scores the utterance against each candidate's text.
//
// The score is |utterance ∩ candidate| / |candidate|: the denominator is
// always the candidate's base-form count, so a short utterance that
// fully contains a short answer scores 1.0 even with extra words.
// Candidates whose normalized form is empty are never matched.
// Results at or above threshold are returned sorted by descending
// coincidence; ties keep the original candidate order.
func MatchByText(a morph.Analyzer, utterance string, answers []Candidate, threshold float64) []Diff {
	utter := NormalizeSet(a, Tokenize(utterance))
	var result []Diff
	for _, cand := range answers {
		source := NormalizeSet(a, Tokenize(cand.Text))
		if len(source) == 0 {
			continue
		}
		c := coincidence(utter, source)
		if c >= threshold {
			result = append(result, Diff{Answer: cand.Text, Ordinal: cand.Ordinal, Coincidence: c})
		}
	}
	sortDiffs(result)
	return result
}

// MatchByNumber scores the utterance against each candidate's literal
// ordinal digits ("1" matches the token "1" anywhere in the utterance).
// This is a deliberate low-fidelity fallback, not numeral parsing:
// spoken numerals ("первый") do not match.
func MatchByNumber(a morph.Analyzer, utterance string, answers []Candidate, threshold float64) []Diff {
	utter := digitChars(NormalizeList(a, Tokenize(utterance)))
	var result []Diff
	for _, cand := range answers {
		source := make(map[string]struct{})
		for _, r := range strconv.Itoa(cand.Ordinal) {
			source[string(r)] = struct{}{}
		}
		c := coincidence(utter, source)
		if c >= threshold {
			result = append(result, Diff{Answer: cand.Text, Ordinal: cand.Ordinal, Coincidence: c})
		}
	}
	sortDiffs(result)
	return result
}

func coincidence(input, source map[string]struct{}) float64 {
	if len(source) == 0 {
		return 0
	}
	shared := 0
	for w := range source {
		if _, ok := input[w]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(source))
}

// digitChars collects the digit characters of digit-only tokens.
func digitChars(tokens []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, t := range tokens {
		for _, r := range t {
			if r >= '0' && r <= '9' {
				out[string(r)] = struct{}{}
			}
		}
	}
	return out
}

func sortDiffs(diffs []Diff) {
	sort.SliceStable(diffs, func(i, j int) bool {
		return diffs[i].Coincidence > diffs[j].Coincidence
	})
}
