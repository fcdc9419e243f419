package game

// Outcome is the semantic result of one turn, consumed by the
// presentation layer. Exactly one concrete type is returned per turn.
type Outcome interface{ outcome() }

// QuestionPresented: a question was drawn and is awaiting a guess.
type QuestionPresented struct {
	Question Question
	Answers  []AnswerRef
}

// AnswerOutcome: a guess was resolved to a single option.
// Revealed carries the correct answer text when the controller gives up
// on retries; RetryOffered/HintOffered drive the prompt wording.
type AnswerOutcome struct {
	Correct      bool
	Revealed     string
	RetryOffered bool
	HintOffered  bool
}

// HintDelivered: hint text plus the updated remaining count.
// CountOnly reports the count without consuming a hint (the "how many
// hints remain" query); Depleted means no hint was available.
type HintDelivered struct {
	Text      string
	Remaining int
	CountOnly bool
	Depleted  bool
}

// FactDelivered: the trivia fact for the answered question.
type FactDelivered struct {
	Fact Text
}

// GameEnded: the pool is exhausted or the user is leaving.
// SessionOver tells the transport to close the session.
type GameEnded struct {
	FinalScore        int
	QuestionsAnswered int
	SessionOver       bool
}

// Unrecognized: the utterance resolved to zero or many options, or made
// no sense in the current state. Answers re-presents the current
// options in the guessing state.
type Unrecognized struct {
	State   State
	Answers []AnswerRef
}

func (QuestionPresented) outcome() {}
func (AnswerOutcome) outcome()     {}
func (HintDelivered) outcome()     {}
func (FactDelivered) outcome()     {}
func (GameEnded) outcome()         {}
func (Unrecognized) outcome()      {}
