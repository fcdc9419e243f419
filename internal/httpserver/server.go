// HTTP wiring for the lecture skill.
// Responsibilities:
//   - Router + middleware (JSON, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - The dialog webhook: decode request, restore the session snapshot,
//     run one turn through the game engine, render and persist the
//     response (replay cache).
//   - Admin endpoints (JWT): insert questions, reset a user's seen-set.
//
// Notes:
//   - The webhook always answers 200 with a rendered reply; engine and
//     store failures surface as a uniform spoken apology, never a 5xx
//     the platform would read to the user as a raw error.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/avrorahistoria/lecture-skill/internal/game"
	"github.com/avrorahistoria/lecture-skill/internal/morph"
	"github.com/avrorahistoria/lecture-skill/internal/nlu"
	"github.com/avrorahistoria/lecture-skill/internal/store"
)

const apiVersion = "1.0"

// QuestionInserter is the write side of the question repository, used
// by the admin surface.
type QuestionInserter interface {
	Insert(ctx context.Context, q *game.Question) error
}

// Config carries the transport knobs.
type Config struct {
	WebhookPath string
	JWTSecret   string
	ReplayTTL   time.Duration
}

// Server bundles the router, the game engine and the stores.
type Server struct {
	r         *chi.Mux
	engine    *game.Engine
	questions QuestionInserter
	seen      game.SeenStore
	replay    store.ReplayCache
	render    *renderer
	cfg       Config
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, questions QuestionInserter, seen game.SeenStore, replay store.ReplayCache, analyzer morph.Analyzer, cfg Config) *Server {
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = "/webhook/lecture"
	}
	if cfg.ReplayTTL <= 0 {
		cfg.ReplayTTL = 10 * time.Minute
	}
	s := &Server{
		r:         chi.NewRouter(),
		engine:    engine,
		questions: questions,
		seen:      seen,
		replay:    replay,
		render:    newRenderer(analyzer),
		cfg:       cfg,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)

	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"lecture-skill","endpoints":["/health","POST ` + cfg.WebhookPath + `"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post(cfg.WebhookPath, s.handleWebhook)

	s.r.With(requireAdmin(cfg.JWTSecret)).Post("/admin/questions", s.handleInsertQuestion)
	s.r.With(requireAdmin(cfg.JWTSecret)).Delete("/admin/seen/{userID}", s.handleResetSeen)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// ---------------------------- webhook --------------------------------------

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req aliceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	userID := req.userID()
	intents := req.intents()

	// "Повтори": re-issue the previous turn's rendered output verbatim.
	if hasIntent(intents, nlu.IntentRepeat) {
		if cached, err := s.replay.LastResponse(ctx, req.Session.SessionID); err == nil {
			_, _ = w.Write(cached)
			return
		}
		// nothing cached: fall through and handle as a normal turn
	}

	state, err := s.restoreState(&req)
	if err != nil {
		log.Warn().Err(err).Str("session", req.Session.SessionID).Msg("corrupt session state, resetting")
		s.writeResponse(ctx, w, req.Session.SessionID, s.render.apology(), s.freshState())
		return
	}

	// A brand-new session gets the greeting; the engine takes over from
	// the first real utterance.
	if req.Session.New {
		s.writeResponse(ctx, w, req.Session.SessionID, s.render.greeting(), state)
		return
	}

	// Help is a presentation concern: answer it without touching state.
	if hasIntent(intents, nlu.IntentHelp) {
		s.writeResponse(ctx, w, req.Session.SessionID, s.render.help(), state)
		return
	}

	in := game.Input{
		Utterance: req.Request.Command,
		Button:    req.button(),
		Intents:   intents,
	}

	newScene, outcome, err := s.engine.HandleTurn(ctx, userID, state.Scene, &state.Game, in)
	switch {
	case errors.Is(err, game.ErrStateCorrupt):
		log.Warn().Err(err).Str("session", req.Session.SessionID).Msg("corrupt snapshot, resetting")
		s.writeResponse(ctx, w, req.Session.SessionID, s.render.apology(), s.freshState())
		return
	case err != nil:
		log.Error().Err(err).Str("session", req.Session.SessionID).Str("user", userID).Msg("turn failed")
		s.writeResponse(ctx, w, req.Session.SessionID, s.render.apology(), state)
		return
	}

	state.Scene = newScene
	reply := s.render.render(outcome, &state.Game)
	s.writeResponse(ctx, w, req.Session.SessionID, reply, state)
}

func (s *Server) restoreState(req *aliceRequest) (sessionState, error) {
	if req.Session.New || len(req.State.Session) == 0 || string(req.State.Session) == "null" {
		return s.freshState(), nil
	}
	var state sessionState
	if err := json.Unmarshal(req.State.Session, &state); err != nil {
		return sessionState{}, err
	}
	if state.Scene == "" {
		state.Scene = game.StateStart
	}
	return state, nil
}

func (s *Server) freshState() sessionState {
	return sessionState{Scene: game.StateStart, Game: game.NewSession(s.engine.Hints())}
}

func (s *Server) writeResponse(ctx context.Context, w http.ResponseWriter, sessionID string, reply aliceReply, state sessionState) {
	resp := aliceResponse{
		Response:     reply,
		SessionState: &state,
		Version:      apiVersion,
	}
	body, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("marshal response")
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if err := s.replay.SaveResponse(ctx, sessionID, body, s.cfg.ReplayTTL); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("save replay entry")
	}
	_, _ = w.Write(body)
}

func hasIntent(intents []string, name string) bool {
	for _, i := range intents {
		if i == name {
			return true
		}
	}
	return false
}

// ----------------------------- admin ---------------------------------------

func (s *Server) handleInsertQuestion(w http.ResponseWriter, r *http.Request) {
	var q game.Question
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if err := validateQuestion(&q); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if err := s.questions.Insert(r.Context(), &q); err != nil {
		log.Error().Err(err).Msg("insert question")
		http.Error(w, `{"error":"insert_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"id": q.ID})
}

func (s *Server) handleResetSeen(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.seen.Reset(r.Context(), userID); err != nil {
		log.Error().Err(err).Str("user", userID).Msg("reset seen-set")
		http.Error(w, `{"error":"reset_failed"}`, http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(`{"ok":true}`))
}

func validateQuestion(q *game.Question) error {
	if q.FullText.Src == "" {
		return errors.New("empty_question_text")
	}
	if len(q.Answers) < 1 || len(q.Answers) > 3 {
		return errors.New("need_1_to_3_answers")
	}
	correct := 0
	for _, a := range q.Answers {
		if a.Text.Src == "" {
			return errors.New("empty_answer_text")
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return errors.New("need_exactly_one_correct_answer")
	}
	return nil
}
