package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/rs/zerolog/log"

	"github.com/avrorahistoria/lecture-skill/internal/morph"
	"github.com/avrorahistoria/lecture-skill/internal/nlu"
)

// Engine is the game controller. It is stateless between turns: every
// call gets the full session snapshot, mutates it, and returns the next
// state plus a semantic outcome for the presentation layer.
type Engine struct {
	questions QuestionStore
	seen      SeenStore
	morph     morph.Analyzer
	threshold float64
	hints     int
	shuffle   func(n int, swap func(i, j int)) // swappable for tests
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithThreshold overrides the coincidence threshold.
func WithThreshold(t float64) Option { return func(e *Engine) { e.threshold = t } }

// WithHints overrides the per-game hint budget.
func WithHints(n int) Option { return func(e *Engine) { e.hints = n } }

// WithShuffle replaces the answer shuffler (tests pin the order).
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(e *Engine) { e.shuffle = fn }
}

// NewEngine constructs the controller.
func NewEngine(questions QuestionStore, seen SeenStore, analyzer morph.Analyzer, opts ...Option) *Engine {
	e := &Engine{
		questions: questions,
		seen:      seen,
		morph:     analyzer,
		threshold: nlu.DefaultThreshold,
		hints:     3,
		shuffle:   rand.Shuffle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hints reports the configured per-game hint budget (used by the
// transport to initialize fresh sessions).
func (e *Engine) Hints() int { return e.hints }

// HandleTurn processes one request/response cycle. The session snapshot
// is mutated in place; the returned state replaces the stored one.
func (e *Engine) HandleTurn(ctx context.Context, userID string, st State, sess *Session, in Input) (State, Outcome, error) {
	if err := sess.Validate(); err != nil {
		return st, nil, err
	}
	if st == "" {
		st = StateStart
	}

	// The hint action cuts across states: it is available while a
	// question is in play, never a state of its own.
	if st == StateQuestionTime || st == StateGuessAnswer || st == StateFact {
		if in.has(nlu.IntentHintCount) {
			return st, HintDelivered{Remaining: sess.HintsRemaining, CountOnly: true}, nil
		}
		if in.has(nlu.IntentHint) {
			return e.handleHint(ctx, st, sess)
		}
	}

	switch st {
	case StateStart:
		if in.has(nlu.IntentConfirm) {
			return e.drawQuestion(ctx, userID, sess)
		}
		if in.has(nlu.IntentReject) {
			return StateEnd, GameEnded{FinalScore: sess.Score, QuestionsAnswered: sess.QuestionsAnswered, SessionOver: true}, nil
		}
		return st, Unrecognized{State: st}, nil

	case StateQuestionTime:
		if in.has(nlu.IntentReject) {
			return StateEnd, GameEnded{FinalScore: sess.Score, QuestionsAnswered: sess.QuestionsAnswered, SessionOver: true}, nil
		}
		return e.drawQuestion(ctx, userID, sess)

	case StateGuessAnswer:
		return e.handleGuess(sess, in)

	case StateFact:
		if in.has(nlu.IntentConfirm) {
			q, err := e.questions.Get(ctx, sess.CurrentQuestionID)
			if err != nil {
				return st, nil, fmt.Errorf("%w: load fact for %s: %v", ErrCollaborator, sess.CurrentQuestionID, err)
			}
			return StateQuestionTime, FactDelivered{Fact: q.Fact}, nil
		}
		if in.has(nlu.IntentReject) {
			// Declining the fact skips it and moves straight on.
			return e.drawQuestion(ctx, userID, sess)
		}
		return st, Unrecognized{State: st}, nil

	case StateEnd:
		if in.has(nlu.IntentConfirm) {
			// Restart: score and the hint budget are per-playthrough.
			sess.Score = 0
			sess.QuestionsAnswered = 0
			sess.HintsRemaining = e.hints
			return e.drawQuestion(ctx, userID, sess)
		}
		if in.has(nlu.IntentReject) {
			return StateEnd, GameEnded{FinalScore: sess.Score, QuestionsAnswered: sess.QuestionsAnswered, SessionOver: true}, nil
		}
		return st, Unrecognized{State: st}, nil
	}

	return st, nil, fmt.Errorf("%w: unknown state %q", ErrStateCorrupt, st)
}

// drawQuestion samples an unseen question, shuffles its options and
// resets the per-question counters. An exhausted pool clears the user's
// seen-set and routes to the end state so a session never dead-ends (at
// the cost of repeats across playthroughs).
func (e *Engine) drawQuestion(ctx context.Context, userID string, sess *Session) (State, Outcome, error) {
	exclude, err := e.seen.Seen(ctx, userID)
	if err != nil {
		return StateQuestionTime, nil, fmt.Errorf("%w: load seen-set: %v", ErrCollaborator, err)
	}

	q, err := e.questions.SampleUnseen(ctx, exclude)
	if errors.Is(err, ErrPoolExhausted) {
		if rerr := e.seen.Reset(ctx, userID); rerr != nil {
			return StateQuestionTime, nil, fmt.Errorf("%w: reset seen-set: %v", ErrCollaborator, rerr)
		}
		log.Info().Str("user", userID).Msg("question pool exhausted, seen-set cleared")
		return StateEnd, GameEnded{FinalScore: sess.Score, QuestionsAnswered: sess.QuestionsAnswered}, nil
	}
	if err != nil {
		return StateQuestionTime, nil, fmt.Errorf("%w: sample question: %v", ErrCollaborator, err)
	}

	answers := make([]Answer, len(q.Answers))
	copy(answers, q.Answers)
	e.shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

	refs := make([]AnswerRef, len(answers))
	correct := 0
	for i, a := range answers {
		refs[i] = AnswerRef{Ordinal: i + 1, Text: a.Text.Src}
		if a.IsCorrect {
			correct = i + 1
		}
	}

	sess.CurrentQuestionID = q.ID
	sess.CurrentAnswers = refs
	sess.CorrectOrdinal = correct
	sess.AttemptCount = 0
	sess.HintIssued = false
	sess.QuestionsAnswered++

	if err := e.seen.MarkSeen(ctx, userID, q.ID); err != nil {
		return StateQuestionTime, nil, fmt.Errorf("%w: mark seen: %v", ErrCollaborator, err)
	}

	shuffled := *q
	shuffled.Answers = answers
	return StateGuessAnswer, QuestionPresented{Question: shuffled, Answers: refs}, nil
}

// handleGuess classifies the utterance (or button press) and applies the
// retry policy. An unresolved input changes neither state nor counters.
func (e *Engine) handleGuess(sess *Session, in Input) (State, Outcome, error) {
	check := e.checkAnswer(sess, in)
	if !check.resolved {
		return StateGuessAnswer, Unrecognized{State: StateGuessAnswer, Answers: sess.CurrentAnswers}, nil
	}

	if check.correct {
		sess.Score++
		return StateFact, AnswerOutcome{Correct: true}, nil
	}

	// Retry policy: the first wrong answer earns a retry (with a hint
	// offer while hints remain); the second reveals the answer.
	firstAttempt := sess.AttemptCount < 1
	sess.AttemptCount++
	switch {
	case firstAttempt && sess.HintsRemaining > 0:
		return StateGuessAnswer, AnswerOutcome{RetryOffered: true, HintOffered: true}, nil
	case firstAttempt:
		return StateGuessAnswer, AnswerOutcome{RetryOffered: true}, nil
	default:
		return StateFact, AnswerOutcome{Revealed: sess.answerText(sess.CorrectOrdinal)}, nil
	}
}

// handleHint consumes a hint and forces the session back into the
// guessing state. A repeated request for the same question re-returns
// the hint without a second decrement.
func (e *Engine) handleHint(ctx context.Context, st State, sess *Session) (State, Outcome, error) {
	if sess.CurrentQuestionID == "" {
		return st, Unrecognized{State: st}, nil
	}
	if sess.HintsRemaining == 0 && !sess.HintIssued {
		return st, HintDelivered{Remaining: 0, Depleted: true}, nil
	}

	q, err := e.questions.Get(ctx, sess.CurrentQuestionID)
	if err != nil {
		return st, nil, fmt.Errorf("%w: load hint for %s: %v", ErrCollaborator, sess.CurrentQuestionID, err)
	}

	if !sess.HintIssued {
		sess.HintsRemaining--
		sess.HintIssued = true
	}
	return StateGuessAnswer, HintDelivered{Text: q.Hint.Src, Remaining: sess.HintsRemaining}, nil
}
