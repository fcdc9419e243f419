package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/avrorahistoria/lecture-skill/internal/game"
)

// Questions is the SQLite-backed question repository. Answer options are
// stored as a JSON column on the question row: the option set is small
// (≤3), always read as a whole, and never queried individually.
type Questions struct {
	db *sql.DB
}

// NewQuestions wraps an opened database handle.
func NewQuestions(db *sql.DB) *Questions { return &Questions{db: db} }

const questionColumns = `id, full_text, full_tts, short_text, hint, fact, answers`

// SampleUnseen draws one random question whose id is not excluded.
func (s *Questions) SampleUnseen(ctx context.Context, exclude []string) (*game.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions`
	args := make([]any, 0, len(exclude))
	if len(exclude) > 0 {
		query += ` WHERE id NOT IN (?` + strings.Repeat(",?", len(exclude)-1) + `)`
		for _, id := range exclude {
			args = append(args, id)
		}
	}
	query += ` ORDER BY RANDOM() LIMIT 1`

	q, err := scanQuestion(s.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, game.ErrPoolExhausted
	}
	return q, err
}

func (s *Questions) Get(ctx context.Context, id string) (*game.Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id=?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return q, err
}

// Insert stores a question, assigning an id when missing.
func (s *Questions) Insert(ctx context.Context, q *game.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	answers, err := json.Marshal(q.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO questions (id, full_text, full_tts, short_text, hint, fact, answers)
        VALUES (?,?,?,?,?,?,?)`,
		q.ID, q.FullText.Src, q.FullText.TTS, q.ShortText.Src, q.Hint.Src, q.Fact.Src, string(answers),
	)
	return err
}

func (s *Questions) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM questions`).Scan(&n)
	return n, err
}

func scanQuestion(row *sql.Row) (*game.Question, error) {
	var q game.Question
	var answersJSON string
	if err := row.Scan(&q.ID, &q.FullText.Src, &q.FullText.TTS, &q.ShortText.Src, &q.Hint.Src, &q.Fact.Src, &answersJSON); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(answersJSON), &q.Answers); err != nil {
		return nil, fmt.Errorf("question %s: decode answers: %w", q.ID, err)
	}
	return &q, nil
}
