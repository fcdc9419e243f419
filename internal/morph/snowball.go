package morph

import (
	"strings"

	"github.com/kljensen/snowball"
)

// Snowball is the default Analyzer, backed by the Snowball Russian
// stemmer. Stems are not dictionary lemmas, but they are deterministic
// and collapse the inflected forms we care about ("риме" and "рим" share
// a stem), which is all the matching pipeline requires.
type Snowball struct {
	forms map[string][3]string // singular / few / many
}

// NewSnowball constructs the analyzer with agreement forms for the words
// that appear in rendered messages.
func NewSnowball() *Snowball {
	return &Snowball{
		forms: map[string][3]string{
			"подсказка": {"подсказка", "подсказки", "подсказок"},
			"балл":      {"балл", "балла", "баллов"},
			"вопрос":    {"вопрос", "вопроса", "вопросов"},
			"попытка":   {"попытка", "попытки", "попыток"},
		},
	}
}

// Normalize lowercases and stems a token. Digit-only tokens pass through
// verbatim (ordinals must stay matchable), and a failed stem falls back
// to the surface token.
func (s *Snowball) Normalize(token string) string {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" || isDigits(token) {
		return token
	}
	stem, err := snowball.Stem(token, "russian", false)
	if err != nil || stem == "" {
		return token
	}
	return stem
}

// AgreeWithNumber picks the Russian plural form for n. Words without a
// registered form table are returned unchanged.
func (s *Snowball) AgreeWithNumber(word string, n int) string {
	f, ok := s.forms[strings.ToLower(word)]
	if !ok {
		return word
	}
	if n < 0 {
		n = -n
	}
	// 11..14 take the genitive plural regardless of the last digit.
	if r := n % 100; r >= 11 && r <= 14 {
		return f[2]
	}
	switch n % 10 {
	case 1:
		return f[0]
	case 2, 3, 4:
		return f[1]
	default:
		return f[2]
	}
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
