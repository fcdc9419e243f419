package httpserver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorahistoria/lecture-skill/internal/nlu"
)

func TestUserIDPrecedence(t *testing.T) {
	var req aliceRequest
	req.Session.SessionID = "sess"
	assert.Equal(t, "sess", req.userID(), "session id is the last resort")

	req.Session.UserID = "legacy"
	assert.Equal(t, "legacy", req.userID())

	req.Session.Application.ApplicationID = "app"
	assert.Equal(t, "app", req.userID())

	req.Session.User.UserID = "account"
	assert.Equal(t, "account", req.userID(), "authenticated account id wins")
}

func TestIntentsMergePlatformAndKeywords(t *testing.T) {
	var req aliceRequest
	req.Request.Command = "да, повтори"
	req.Request.NLU.Intents = map[string]json.RawMessage{
		intentYandexConfirm: json.RawMessage(`{}`),
		intentYandexHelp:    json.RawMessage(`{}`),
	}

	got := req.intents()
	assert.Contains(t, got, nlu.IntentConfirm)
	assert.Contains(t, got, nlu.IntentRepeat)
	assert.Contains(t, got, nlu.IntentHelp)

	// platform duplicate of a keyword hit is not added twice
	count := 0
	for _, i := range got {
		if i == nlu.IntentConfirm {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestButtonDecoding(t *testing.T) {
	var req aliceRequest
	assert.Nil(t, req.button(), "plain utterance has no button")

	req.Request.Type = requestTypeButtonPressed
	req.Request.Payload = json.RawMessage(`{"number":2,"is_true":false}`)
	b := req.button()
	require.NotNil(t, b)
	assert.Equal(t, 2, b.Ordinal)
	assert.False(t, b.IsCorrect)

	req.Request.Payload = json.RawMessage(`{"unrelated":true}`)
	assert.Nil(t, req.button(), "payloads from other skills are ignored")

	req.Request.Payload = json.RawMessage(`not json`)
	assert.Nil(t, req.button())
}

func TestSessionStateRoundTrip(t *testing.T) {
	state := sessionState{Scene: "guess_answer"}
	state.Game.Score = 2
	state.Game.HintsRemaining = 1

	raw, err := json.Marshal(&state)
	require.NoError(t, err)

	var back sessionState
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, state, back)
}
