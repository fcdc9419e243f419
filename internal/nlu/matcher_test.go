package nlu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAnalyzer gives tests full control over base forms: known inflected
// forms map through the table, everything else is identity.
type fakeAnalyzer struct {
	lemmas map[string]string
}

func (f fakeAnalyzer) Normalize(token string) string {
	token = strings.ToLower(token)
	if l, ok := f.lemmas[token]; ok {
		return l
	}
	return token
}

func (f fakeAnalyzer) AgreeWithNumber(word string, _ int) string { return word }

func testAnalyzer() fakeAnalyzer {
	return fakeAnalyzer{lemmas: map[string]string{
		"риме":  "рим",
		"рима":  "рим",
		"битвы": "битва",
	}}
}

var cities = []Candidate{
	{Ordinal: 1, Text: "Рим"},
	{Ordinal: 2, Text: "Карфаген"},
	{Ordinal: 3, Text: "Флоренция"},
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"санкт", "петербург"}, Tokenize("Санкт-Петербург"))
	assert.Equal(t, []string{"рим", "наверное", "рим"}, Tokenize("Рим, наверное... Рим!"))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("  ...  "))
}

func TestMatchByText_ExactContainment(t *testing.T) {
	diffs := MatchByText(testAnalyzer(), "думаю он находится в риме", cities, DefaultThreshold)
	require.Len(t, diffs, 1)
	assert.Equal(t, 1, diffs[0].Ordinal)
	assert.Equal(t, "Рим", diffs[0].Answer)
	assert.Equal(t, 1.0, diffs[0].Coincidence)
}

func TestMatchByText_ScoreBounds(t *testing.T) {
	utterances := []string{
		"рим", "рим карфаген флоренция", "совсем мимо", "", "не знаю",
	}
	for _, u := range utterances {
		for _, d := range MatchByText(testAnalyzer(), u, cities, 0) {
			assert.GreaterOrEqual(t, d.Coincidence, 0.0, "utterance %q", u)
			assert.LessOrEqual(t, d.Coincidence, 1.0, "utterance %q", u)
		}
	}
}

func TestMatchByText_EmptyCandidateNeverMatches(t *testing.T) {
	answers := []Candidate{
		{Ordinal: 1, Text: "?!"},
		{Ordinal: 2, Text: "Рим"},
	}
	diffs := MatchByText(testAnalyzer(), "рим", answers, DefaultThreshold)
	require.Len(t, diffs, 1)
	assert.Equal(t, 2, diffs[0].Ordinal)
}

func TestMatchByText_DescendingStableOrder(t *testing.T) {
	answers := []Candidate{
		{Ordinal: 1, Text: "битва при ватерлоо"},
		{Ordinal: 2, Text: "рим"},
		{Ordinal: 3, Text: "карфаген"},
	}
	diffs := MatchByText(testAnalyzer(), "рим и карфаген", answers, 0.1)
	require.Len(t, diffs, 2)
	// equal scores keep the original candidate order
	assert.Equal(t, 2, diffs[0].Ordinal)
	assert.Equal(t, 3, diffs[1].Ordinal)
}

func TestMatchByNumber_Fallback(t *testing.T) {
	diffs := MatchByNumber(testAnalyzer(), "думаю это 1", cities, DefaultThreshold)
	require.Len(t, diffs, 1)
	assert.Equal(t, 1, diffs[0].Ordinal)
	assert.Equal(t, 1.0, diffs[0].Coincidence)
}

func TestMatchByNumber_NoDigitsNoMatch(t *testing.T) {
	diffs := MatchByNumber(testAnalyzer(), "первый вариант", cities, DefaultThreshold)
	assert.Empty(t, diffs)
}

func TestDetectIntents(t *testing.T) {
	assert.Contains(t, DetectIntents("да, давай"), IntentConfirm)
	assert.Contains(t, DetectIntents("нет, хватит"), IntentReject)
	assert.Contains(t, DetectIntents("повтори пожалуйста"), IntentRepeat)
	assert.Contains(t, DetectIntents("что ты умеешь"), IntentHelp)
	assert.Contains(t, DetectIntents("дай подсказку"), IntentHint)
	assert.Contains(t, DetectIntents("сколько подсказок осталось"), IntentHintCount)
	assert.NotContains(t, DetectIntents("сколько подсказок осталось"), IntentHint)
	assert.Empty(t, DetectIntents("карфаген"))
}
