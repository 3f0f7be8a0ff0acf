// internal/chat/session.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bettersnoozing/hack-mcwics/internal/models"
)

// SessionStore holds per-conversation history with a bounded retention
// window. Callers serialize access per session id; no locking protocol is
// defined for concurrent messages within one session.
type SessionStore interface {
	Append(ctx context.Context, sessionID string, msg models.ChatMessage) error
	History(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemorySessionStore backs sessions with an in-process map. Used in tests and
// single-instance demo deployments.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]models.ChatMessage
	limit    int
}

func NewMemorySessionStore(limit int) *MemorySessionStore {
	if limit <= 0 {
		limit = 20
	}
	return &MemorySessionStore{
		sessions: make(map[string][]models.ChatMessage),
		limit:    limit,
	}
}

func (m *MemorySessionStore) Append(_ context.Context, sessionID string, msg models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := append(m.sessions[sessionID], msg)
	if len(history) > m.limit {
		history = history[len(history)-m.limit:]
	}
	m.sessions[sessionID] = history
	return nil
}

func (m *MemorySessionStore) History(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := m.sessions[sessionID]
	out := make([]models.ChatMessage, len(history))
	copy(out, history)
	return out, nil
}

func (m *MemorySessionStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}

// RedisSessionStore backs sessions with a Redis list per session, trimmed to
// the history limit and expired after the TTL of inactivity.
type RedisSessionStore struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, limit int, ttl time.Duration) *RedisSessionStore {
	if limit <= 0 {
		limit = 20
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisSessionStore{client: client, limit: limit, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return "chat:session:" + sessionID
}

func (r *RedisSessionStore) Append(ctx context.Context, sessionID string, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}

	key := sessionKey(sessionID)
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, int64(-r.limit), -1)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append session history: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	raw, err := r.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read session history: %w", err)
	}

	history := make([]models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip entries written by an incompatible version
		}
		history = append(history, msg)
	}
	return history, nil
}

func (r *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
