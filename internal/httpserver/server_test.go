package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avrorahistoria/lecture-skill/internal/game"
	"github.com/avrorahistoria/lecture-skill/internal/morph"
	"github.com/avrorahistoria/lecture-skill/internal/store"
)

const testSecret = "test-secret"

type stubQuestions struct{ byID map[string]*game.Question }

func (s stubQuestions) SampleUnseen(_ context.Context, exclude []string) (*game.Question, error) {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	// deterministic order: lexical by id
	var pick *game.Question
	for id, q := range s.byID {
		if _, ok := skip[id]; ok {
			continue
		}
		if pick == nil || id < pick.ID {
			pick = q
		}
	}
	if pick == nil {
		return nil, game.ErrPoolExhausted
	}
	return pick, nil
}

func (s stubQuestions) Get(_ context.Context, id string) (*game.Question, error) {
	q, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("question %q not found", id)
	}
	return q, nil
}

type stubInserter struct{ inserted []*game.Question }

func (s *stubInserter) Insert(_ context.Context, q *game.Question) error {
	if q.ID == "" {
		q.ID = "generated"
	}
	s.inserted = append(s.inserted, q)
	return nil
}

func txt(src string) game.Text { return game.Text{Src: src} }

func senateQuestion(id string) *game.Question {
	return &game.Question{
		ID:       id,
		FullText: txt("В каком городе заседал римский сенат?"),
		Hint:     txt("Вечный город."),
		Fact:     txt("Сенат заседал в курии на форуме."),
		Answers: []game.Answer{
			{Text: txt("Рим"), IsCorrect: true},
			{Text: txt("Карфаген")},
			{Text: txt("Флоренция")},
		},
	}
}

func newTestServer(t *testing.T, qs ...*game.Question) (*Server, *stubInserter) {
	t.Helper()
	if len(qs) == 0 {
		qs = []*game.Question{senateQuestion("q1")}
	}
	byID := make(map[string]*game.Question, len(qs))
	for _, q := range qs {
		byID[q.ID] = q
	}
	mem := store.NewMemory()
	analyzer := morph.NewSnowball()
	engine := game.NewEngine(stubQuestions{byID: byID}, mem, analyzer,
		game.WithHints(3),
		game.WithShuffle(func(int, func(i, j int)) {}), // keep stored order
	)
	ins := &stubInserter{}
	srv := New(engine, ins, mem, mem, analyzer, Config{
		WebhookPath: "/webhook/lecture",
		JWTSecret:   testSecret,
		ReplayTTL:   time.Minute,
	})
	return srv, ins
}

// turn posts one webhook request and decodes the response.
func turn(t *testing.T, srv *Server, req aliceRequest) aliceResponse {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/lecture", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp aliceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// carry re-serializes the returned session_state into the next request,
// the way the platform echoes it back.
func carry(t *testing.T, req *aliceRequest, resp aliceResponse) {
	t.Helper()
	state, err := json.Marshal(resp.SessionState)
	require.NoError(t, err)
	req.Session.New = false
	req.State.Session = state
}

func baseRequest(command string) aliceRequest {
	var req aliceRequest
	req.Version = "1.0"
	req.Session.SessionID = "sess-1"
	req.Session.User.UserID = "user-1"
	req.Request.Command = command
	return req
}

func TestWebhookNewSessionGreets(t *testing.T) {
	srv, _ := newTestServer(t)

	req := baseRequest("")
	req.Session.New = true
	resp := turn(t, srv, req)

	assert.Contains(t, resp.Response.Text, "Аврора Хистория")
	require.NotNil(t, resp.SessionState)
	assert.Equal(t, game.StateStart, resp.SessionState.Scene)
	assert.Equal(t, 3, resp.SessionState.Game.HintsRemaining)
	assert.False(t, resp.Response.EndSession)
}

func TestWebhookFullRound(t *testing.T) {
	srv, _ := newTestServer(t)

	req := baseRequest("")
	req.Session.New = true
	resp := turn(t, srv, req)

	// confirm the start: the first question comes out with answer buttons
	carry(t, &req, resp)
	req.Request.Command = "да"
	resp = turn(t, srv, req)
	assert.Contains(t, resp.Response.Text, "римский сенат")
	assert.Equal(t, game.StateGuessAnswer, resp.SessionState.Scene)
	require.Len(t, resp.Response.Buttons, 3)
	assert.Equal(t, "Рим", resp.Response.Buttons[0].Title)

	// a correct spoken answer scores and offers the fact
	carry(t, &req, resp)
	req.Request.Command = "наверное в риме"
	resp = turn(t, srv, req)
	assert.Contains(t, resp.Response.Text, "Верно")
	assert.Equal(t, game.StateFact, resp.SessionState.Scene)
	assert.Equal(t, 1, resp.SessionState.Game.Score)

	// accept the fact
	carry(t, &req, resp)
	req.Request.Command = "да"
	resp = turn(t, srv, req)
	assert.Contains(t, resp.Response.Text, "курии")
	assert.Equal(t, game.StateQuestionTime, resp.SessionState.Scene)
}

func TestWebhookButtonPressBypassesMatcher(t *testing.T) {
	srv, _ := newTestServer(t)

	req := baseRequest("")
	req.Session.New = true
	resp := turn(t, srv, req)
	carry(t, &req, resp)
	req.Request.Command = "да"
	resp = turn(t, srv, req)

	carry(t, &req, resp)
	req.Request.Command = ""
	req.Request.Type = requestTypeButtonPressed
	req.Request.Payload = json.RawMessage(`{"number":1,"is_true":true}`)
	resp = turn(t, srv, req)
	assert.Contains(t, resp.Response.Text, "Верно")
	assert.Equal(t, 1, resp.SessionState.Game.Score)
}

func TestWebhookRepeatServesCachedResponse(t *testing.T) {
	srv, _ := newTestServer(t)

	req := baseRequest("")
	req.Session.New = true
	resp := turn(t, srv, req)
	carry(t, &req, resp)
	req.Request.Command = "да"
	first := turn(t, srv, req)

	// "повтори" replays the previous body verbatim, state untouched
	carry(t, &req, first)
	req.Request.Command = "повтори"
	replay := turn(t, srv, req)
	assert.Equal(t, first.Response.Text, replay.Response.Text)
	assert.Equal(t, first.SessionState.Scene, replay.SessionState.Scene)
}

func TestWebhookHelpLeavesStateAlone(t *testing.T) {
	srv, _ := newTestServer(t)

	req := baseRequest("")
	req.Session.New = true
	resp := turn(t, srv, req)
	carry(t, &req, resp)
	req.Request.Command = "да"
	resp = turn(t, srv, req)

	carry(t, &req, resp)
	req.Request.Command = "помощь"
	help := turn(t, srv, req)
	assert.Contains(t, help.Response.Text, "Удивительная лекция")
	assert.Equal(t, game.StateGuessAnswer, help.SessionState.Scene)
	assert.Equal(t, resp.SessionState.Game, help.SessionState.Game)
}

func TestWebhookCorruptStateResets(t *testing.T) {
	srv, _ := newTestServer(t)

	req := baseRequest("да")
	req.State.Session = json.RawMessage(`{"scene":[]}`)
	resp := turn(t, srv, req)

	assert.Contains(t, resp.Response.Text, "пошло не так")
	assert.Equal(t, game.StateStart, resp.SessionState.Scene)
	assert.Equal(t, 0, resp.SessionState.Game.Score)
}

func TestWebhookBadJSONRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook/lecture", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func signToken(t *testing.T, secret, id string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": id})
	s, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAdminInsertQuestion(t *testing.T) {
	srv, ins := newTestServer(t)

	q := senateQuestion("")
	body, err := json.Marshal(q)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/admin/questions", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, ins.inserted, 1)
	assert.Equal(t, "В каком городе заседал римский сенат?", ins.inserted[0].FullText.Src)
}

func TestAdminRejectsBadAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"wrong secret", signToken(t, "other-secret", "admin")},
		{"empty id claim", signToken(t, testSecret, "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/admin/questions", bytes.NewReader([]byte("{}")))
			if tc.token != "" {
				r.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, r)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminInsertValidation(t *testing.T) {
	srv, ins := newTestServer(t)

	bad := senateQuestion("")
	bad.Answers[0].IsCorrect = false // no correct option left
	body, err := json.Marshal(bad)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/admin/questions", bytes.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, ins.inserted)
}

func TestAdminResetSeen(t *testing.T) {
	srv, _ := newTestServer(t)

	// draw a question so user-1 has a seen entry
	req := baseRequest("")
	req.Session.New = true
	resp := turn(t, srv, req)
	carry(t, &req, resp)
	req.Request.Command = "да"
	turn(t, srv, req)

	ids, err := srv.seen.Seen(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	r := httptest.NewRequest(http.MethodDelete, "/admin/seen/user-1", nil)
	r.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "admin"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)

	ids, err = srv.seen.Seen(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestHealthAndNotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
