package admin

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/apperrors"
)

// sessionTTL bounds how long an admin login stays valid
const sessionTTL = 2 * time.Hour

// SessionStore persists admin session tokens with an expiry
type SessionStore interface {
	Put(ctx context.Context, token string, expiresAt time.Time) error
	ExpiresAt(ctx context.Context, token string) (time.Time, bool, error)
	Delete(ctx context.Context, token string) error
}

// Auth validates the shared admin password and manages session tokens
type Auth struct {
	password string
	store    SessionStore
	clock    clockwork.Clock
}

// NewAuth creates an Auth over the given session store. An empty password
// disables admin access entirely.
func NewAuth(password string, store SessionStore, clock clockwork.Clock) *Auth {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Auth{password: password, store: store, clock: clock}
}

// Authenticate checks the password and mints a session token valid for two
// hours
func (a *Auth) Authenticate(ctx context.Context, password string) (string, error) {
	if a.password == "" {
		return "", apperrors.New(apperrors.KindConfig, "admin access is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) != 1 {
		return "", apperrors.Terminal("invalid admin password")
	}

	token := uuid.New().String()
	expiresAt := a.clock.Now().Add(sessionTTL)
	if err := a.store.Put(ctx, token, expiresAt); err != nil {
		return "", err
	}

	log.Info().Time("expires_at", expiresAt).Msg("admin session created")
	return token, nil
}

// Valid reports whether the token belongs to an unexpired session. Expired
// sessions are removed as a side effect.
func (a *Auth) Valid(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	expiresAt, ok, err := a.store.ExpiresAt(ctx, token)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if a.clock.Now().After(expiresAt) {
		if err := a.store.Delete(ctx, token); err != nil {
			log.Warn().Err(err).Msg("failed to drop expired admin session")
		}
		return false, nil
	}
	return true, nil
}

// Logout invalidates a session token
func (a *Auth) Logout(ctx context.Context, token string) error {
	return a.store.Delete(ctx, token)
}

// MemorySessionStore keeps sessions in process memory
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]time.Time)}
}

func (s *MemorySessionStore) Put(ctx context.Context, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = expiresAt
	return nil
}

func (s *MemorySessionStore) ExpiresAt(ctx context.Context, token string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiresAt, ok := s.sessions[token]
	return expiresAt, ok, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

const sessionKeyPrefix = "quiz:admin:session:"

// RedisSessionStore keeps sessions in Redis. The key TTL mirrors the session
// expiry so Redis reaps stale sessions on its own.
type RedisSessionStore struct {
	client *redis.Client
	clock  clockwork.Clock
}

func NewRedisSessionStore(client *redis.Client, clock clockwork.Clock) *RedisSessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RedisSessionStore{client: client, clock: clock}
}

func (s *RedisSessionStore) Put(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return apperrors.Validation("session expiry is in the past")
	}
	value := expiresAt.UTC().Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, sessionKeyPrefix+token, value, ttl).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransient, "store admin session", err)
	}
	return nil
}

func (s *RedisSessionStore) ExpiresAt(ctx context.Context, token string) (time.Time, bool, error) {
	value, err := s.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, apperrors.Wrap(apperrors.KindTransient, "load admin session", err)
	}
	expiresAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false, apperrors.Wrap(apperrors.KindUnknown, "parse admin session expiry", err)
	}
	return expiresAt, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return apperrors.Wrap(apperrors.KindTransient, "delete admin session", err)
	}
	return nil
}
