package game

import "errors"

var (
	// ErrStateCorrupt marks a malformed or invariant-violating session
	// snapshot. The transport layer decides whether to apologize and
	// reset; the core does not repair snapshots.
	ErrStateCorrupt = errors.New("session state corrupt")

	// ErrPoolExhausted is returned by QuestionStore.SampleUnseen when
	// every stored question has been served.
	ErrPoolExhausted = errors.New("question pool exhausted")

	// ErrCollaborator wraps failures of external collaborators (stores,
	// morphology) so the transport's single top-level handler can render
	// one uniform failure message. The core performs no retries.
	ErrCollaborator = errors.New("collaborator failure")
)
