// Package game holds the decision core of the lecture skill: the
// per-session state, the answer-checking pipeline and the finite state
// machine that sequences question delivery, retries, hints, facts and
// session teardown. The package performs no I/O of its own — questions
// and the per-user seen-set come in through interfaces, and the full
// session snapshot travels in and out on every turn.
package game

import "context"

// State labels the position of a session in the game state machine.
type State string

const (
	StateStart        State = "start"
	StateQuestionTime State = "question_time"
	StateGuessAnswer  State = "guess_answer"
	StateFact         State = "fact"
	StateEnd          State = "end"
)

// Text is a display string with an optional spoken variant.
type Text struct {
	Src string `json:"src"`
	TTS string `json:"tts,omitempty"`
}

// Spoken returns the TTS variant, falling back to the display text.
func (t Text) Spoken() string {
	if t.TTS != "" {
		return t.TTS
	}
	return t.Src
}

// Answer is one stored answer option of a question.
type Answer struct {
	Text      Text `json:"text"`
	IsCorrect bool `json:"is_correct"`
}

// Question is a stored trivia question with up to three answer options.
type Question struct {
	ID        string   `json:"id"`
	FullText  Text     `json:"full_text"`
	ShortText Text     `json:"short_text"`
	Hint      Text     `json:"hint"`
	Fact      Text     `json:"fact"`
	Answers   []Answer `json:"answers"`
}

// AnswerRef is a displayed answer option: the 1-based ordinal assigned
// after shuffling plus the display text. Insertion order is display
// order.
type AnswerRef struct {
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// Session is the mutable per-session record. It is serialized into the
// platform session state on every response and restored from it on the
// next request; the core never assumes it survives in memory between
// turns.
type Session struct {
	CurrentQuestionID string      `json:"current_question_id,omitempty"`
	CurrentAnswers    []AnswerRef `json:"current_answers,omitempty"`
	CorrectOrdinal    int         `json:"correct_ordinal,omitempty"` // 0 = unset
	AttemptCount      int         `json:"attempt_count"`
	HintsRemaining    int         `json:"hints_remaining"`
	HintIssued        bool        `json:"hint_issued,omitempty"` // hint already delivered for the current question
	Score             int         `json:"score"`
	QuestionsAnswered int         `json:"questions_answered"`
}

// NewSession returns the session defaults for a fresh conversation.
func NewSession(hints int) Session {
	return Session{HintsRemaining: hints}
}

// Validate fails fast on a snapshot that violates the session
// invariants. The core never guesses missing fields beyond the zero
// defaults.
func (s *Session) Validate() error {
	if s.AttemptCount < 0 || s.HintsRemaining < 0 || s.Score < 0 || s.QuestionsAnswered < 0 {
		return ErrStateCorrupt
	}
	if len(s.CurrentAnswers) > 3 {
		return ErrStateCorrupt
	}
	seen := make(map[int]struct{}, len(s.CurrentAnswers))
	for _, a := range s.CurrentAnswers {
		if a.Ordinal < 1 {
			return ErrStateCorrupt
		}
		if _, dup := seen[a.Ordinal]; dup {
			return ErrStateCorrupt
		}
		seen[a.Ordinal] = struct{}{}
	}
	if s.CorrectOrdinal != 0 {
		if _, ok := seen[s.CorrectOrdinal]; !ok {
			return ErrStateCorrupt
		}
	}
	return nil
}

// answerText returns the display text for an ordinal, if present.
func (s *Session) answerText(ordinal int) string {
	for _, a := range s.CurrentAnswers {
		if a.Ordinal == ordinal {
			return a.Text
		}
	}
	return ""
}

// QuestionStore supplies questions. Implementations live outside the
// core (SQLite in this repo).
type QuestionStore interface {
	// SampleUnseen draws one random question whose id is not in exclude.
	// Returns ErrPoolExhausted when none is left.
	SampleUnseen(ctx context.Context, exclude []string) (*Question, error)
	Get(ctx context.Context, id string) (*Question, error)
}

// SeenStore tracks which questions a user has already been served.
// MarkSeen is idempotent: marking an already-seen id is a no-op.
type SeenStore interface {
	Seen(ctx context.Context, userID string) ([]string, error)
	MarkSeen(ctx context.Context, userID, questionID string) error
	Reset(ctx context.Context, userID string) error
}
