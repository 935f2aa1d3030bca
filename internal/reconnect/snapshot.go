package reconnect

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/easternstar/quiz/internal/apperrors"
)

// Snapshot is the client state saved when the page is hidden and restored
// when it comes back, so a phone-locked player resumes where they left off
type Snapshot struct {
	State     json.RawMessage `json:"state"`
	Timestamp time.Time       `json:"timestamp"`
	Page      string          `json:"page"`
}

// Store persists per-client snapshots. Restore returns nil when no snapshot
// exists for the client.
type Store interface {
	Save(ctx context.Context, clientID string, snap Snapshot) error
	Restore(ctx context.Context, clientID string) (*Snapshot, error)
	Clear(ctx context.Context, clientID string) error
}

// MemoryStore is an in-process Store for tests and single-node deployments
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

func (s *MemoryStore) Save(ctx context.Context, clientID string, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[clientID] = snap
	return nil
}

func (s *MemoryStore) Restore(ctx context.Context, clientID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[clientID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *MemoryStore) Clear(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, clientID)
	return nil
}

const snapshotKeyPrefix = "quiz:snapshot:"

// RedisStore persists snapshots in Redis with a TTL so abandoned sessions
// age out on their own
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, clientID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, "marshal snapshot", err)
	}
	if err := s.client.Set(ctx, snapshotKeyPrefix+clientID, data, s.ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransient, "save snapshot", err)
	}
	return nil
}

func (s *RedisStore) Restore(ctx context.Context, clientID string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, snapshotKeyPrefix+clientID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindTransient, "restore snapshot", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnknown, "unmarshal snapshot", err)
	}
	return &snap, nil
}

func (s *RedisStore) Clear(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, snapshotKeyPrefix+clientID).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransient, "clear snapshot", err)
	}
	return nil
}
