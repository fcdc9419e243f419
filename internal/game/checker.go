package game

import (
	"github.com/avrorahistoria/lecture-skill/internal/nlu"
)

// Button is a structured answer payload from the platform: the user
// tapped an option instead of speaking.
type Button struct {
	Ordinal   int  `json:"number"`
	IsCorrect bool `json:"is_true"`
}

// Input is one turn's worth of user signal: the raw utterance, an
// optional button payload and the merged intent names (platform NLU
// plus keyword fallback).
type Input struct {
	Utterance string
	Button    *Button
	Intents   []string
}

func (in Input) has(intent string) bool {
	for _, i := range in.Intents {
		if i == intent {
			return true
		}
	}
	return false
}

// userCheck is the resolved outcome of one guess turn. resolved=false
// means the matcher could not settle on a single option (zero or many
// candidates at both stages).
type userCheck struct {
	resolved bool
	correct  bool
}

// checkAnswer resolves the turn's input to at most one answer option.
//
// Button presses bypass the matcher entirely: the platform payload is
// authoritative. Utterances run through the cleaner, then text
// matching, then the literal-digit fallback; exactly one surviving
// candidate at either stage is the decision.
func (e *Engine) checkAnswer(sess *Session, in Input) userCheck {
	if in.Button != nil {
		return userCheck{resolved: true, correct: in.Button.IsCorrect}
	}

	candidates := make([]nlu.Candidate, len(sess.CurrentAnswers))
	for i, a := range sess.CurrentAnswers {
		candidates[i] = nlu.Candidate{Ordinal: a.Ordinal, Text: a.Text}
	}

	cleaned := nlu.CleanUtterance(e.morph, in.Utterance, candidates)

	diffs := nlu.MatchByText(e.morph, cleaned, candidates, e.threshold)
	if len(diffs) != 1 {
		diffs = nlu.MatchByNumber(e.morph, cleaned, candidates, e.threshold)
	}
	if len(diffs) != 1 {
		// Zero or still-ambiguous: never guess.
		return userCheck{}
	}
	return userCheck{resolved: true, correct: diffs[0].Ordinal == sess.CorrectOrdinal}
}
