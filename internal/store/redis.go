package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis backs the seen-set and the replay cache with a shared Redis
// instance, so restarted sessions keep their playthrough progress.
type Redis struct {
	client *redis.Client
}

// NewRedis connects and pings within a short timeout.
func NewRedis(addr, password string, db int) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Redis{client: client}, nil
}

func (r *Redis) Close() error { return r.client.Close() }

func seenKey(userID string) string      { return "seen:" + userID }
func replayKey(sessionID string) string { return "replay:" + sessionID }

func (r *Redis) Seen(ctx context.Context, userID string) ([]string, error) {
	return r.client.SMembers(ctx, seenKey(userID)).Result()
}

// MarkSeen is idempotent by construction: SADD of a present member is a
// no-op.
func (r *Redis) MarkSeen(ctx context.Context, userID, questionID string) error {
	return r.client.SAdd(ctx, seenKey(userID), questionID).Err()
}

func (r *Redis) Reset(ctx context.Context, userID string) error {
	return r.client.Del(ctx, seenKey(userID)).Err()
}

func (r *Redis) SaveResponse(ctx context.Context, sessionID string, payload []byte, ttl time.Duration) error {
	return r.client.Set(ctx, replayKey(sessionID), payload, ttl).Err()
}

func (r *Redis) LastResponse(ctx context.Context, sessionID string) ([]byte, error) {
	b, err := r.client.Get(ctx, replayKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	return b, err
}
