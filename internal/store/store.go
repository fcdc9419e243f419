// Package store provides the persistence edges of the skill: the
// per-user seen-questions set, the per-session replay cache and the
// SQLite question repository. The game core only sees the interfaces.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a keyed lookup misses.
var ErrNotFound = errors.New("not found")

// ReplayCache keeps the last rendered response per session so a
// "повтори" request can re-issue it verbatim. Entries carry a TTL tied
// to session lifetime; the cache stores rendered payload bytes, never
// callables.
type ReplayCache interface {
	SaveResponse(ctx context.Context, sessionID string, payload []byte, ttl time.Duration) error
	// LastResponse returns ErrNotFound for missing or expired entries.
	LastResponse(ctx context.Context, sessionID string) ([]byte, error)
}
