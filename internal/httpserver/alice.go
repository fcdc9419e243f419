package httpserver

import (
	"encoding/json"

	"github.com/avrorahistoria/lecture-skill/internal/game"
	"github.com/avrorahistoria/lecture-skill/internal/nlu"
)

// Request/response wire schema of the Alice dialogs webhook. Only the
// fields the skill consumes are modeled; unknown fields are ignored on
// decode and omitted on encode.

const (
	requestTypeButtonPressed = "ButtonPressed"

	intentYandexConfirm = "YANDEX.CONFIRM"
	intentYandexReject  = "YANDEX.REJECT"
	intentYandexRepeat  = "YANDEX.REPEAT"
	intentYandexHelp    = "YANDEX.HELP"
)

type aliceRequest struct {
	Version string       `json:"version"`
	Session aliceSession `json:"session"`
	Request aliceInput   `json:"request"`
	State   aliceState   `json:"state"`
}

type aliceSession struct {
	SessionID string `json:"session_id"`
	New       bool   `json:"new"`
	UserID    string `json:"user_id"` // legacy field, still sent by the platform
	User      struct {
		UserID string `json:"user_id"`
	} `json:"user"`
	Application struct {
		ApplicationID string `json:"application_id"`
	} `json:"application"`
}

type aliceInput struct {
	Command           string          `json:"command"`
	OriginalUtterance string          `json:"original_utterance"`
	Type              string          `json:"type"`
	Payload           json.RawMessage `json:"payload"`
	NLU               struct {
		Tokens  []string                   `json:"tokens"`
		Intents map[string]json.RawMessage `json:"intents"`
	} `json:"nlu"`
}

type aliceState struct {
	Session json.RawMessage `json:"session"`
	User    json.RawMessage `json:"user"`
}

// userID prefers the authenticated account id, then the device-bound
// application id; the seen-set must outlive single sessions.
func (a *aliceRequest) userID() string {
	if a.Session.User.UserID != "" {
		return a.Session.User.UserID
	}
	if a.Session.Application.ApplicationID != "" {
		return a.Session.Application.ApplicationID
	}
	if a.Session.UserID != "" {
		return a.Session.UserID
	}
	return a.Session.SessionID
}

// intents merges the platform NLU intents with the keyword fallback.
func (a *aliceRequest) intents() []string {
	out := nlu.DetectIntents(a.Request.Command)
	add := func(name string) {
		for _, i := range out {
			if i == name {
				return
			}
		}
		out = append(out, name)
	}
	for name := range a.Request.NLU.Intents {
		switch name {
		case intentYandexConfirm:
			add(nlu.IntentConfirm)
		case intentYandexReject:
			add(nlu.IntentReject)
		case intentYandexRepeat:
			add(nlu.IntentRepeat)
		case intentYandexHelp:
			add(nlu.IntentHelp)
		}
	}
	return out
}

// button decodes a ButtonPressed payload, if any.
func (a *aliceRequest) button() *game.Button {
	if a.Request.Type != requestTypeButtonPressed || len(a.Request.Payload) == 0 {
		return nil
	}
	var b game.Button
	if err := json.Unmarshal(a.Request.Payload, &b); err != nil || b.Ordinal == 0 {
		return nil
	}
	return &b
}

type aliceResponse struct {
	Response     aliceReply    `json:"response"`
	SessionState *sessionState `json:"session_state,omitempty"`
	Version      string        `json:"version"`
}

type aliceReply struct {
	Text       string        `json:"text"`
	TTS        string        `json:"tts,omitempty"`
	Buttons    []aliceButton `json:"buttons,omitempty"`
	EndSession bool          `json:"end_session"`
}

type aliceButton struct {
	Title   string `json:"title"`
	Payload any    `json:"payload,omitempty"`
	Hide    bool   `json:"hide"`
}

type buttonPayload struct {
	Number int  `json:"number"`
	IsTrue bool `json:"is_true"`
}

// sessionState is the envelope persisted through the platform between
// turns: the FSM state label plus the full session snapshot.
type sessionState struct {
	Scene game.State   `json:"scene"`
	Game  game.Session `json:"game"`
}
