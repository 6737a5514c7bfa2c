// Package tokens tracks which issued sessions are still active, so a logout
// invalidates a token before it expires.
package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type Registry interface {
	Activate(ctx context.Context, sessionID string, ttl time.Duration) error
	Active(ctx context.Context, sessionID string) (bool, error)
	Revoke(ctx context.Context, sessionID string) error
}

type MemoryRegistry struct {
	mu       sync.Mutex
	sessions map[string]time.Time
	now      func() time.Time
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{sessions: make(map[string]time.Time), now: time.Now}
}

func (r *MemoryRegistry) Activate(_ context.Context, sessionID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = r.now().Add(ttl)
	return nil
}

func (r *MemoryRegistry) Active(_ context.Context, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	expiresAt, ok := r.sessions[sessionID]
	if !ok {
		return false, nil
	}
	if !r.now().Before(expiresAt) {
		delete(r.sessions, sessionID)
		return false, nil
	}
	return true, nil
}

func (r *MemoryRegistry) Revoke(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (r *MemoryRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	removed := 0
	for id, expiresAt := range r.sessions {
		if !now.Before(expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// RedisRegistry shares sessions between server replicas. Expiry is left to
// Redis key TTLs.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client, prefix: "schoolmon:session:"}
}

func (r *RedisRegistry) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisRegistry) Activate(ctx context.Context, sessionID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(sessionID), "1", ttl).Err()
}

func (r *RedisRegistry) Active(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisRegistry) Revoke(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
