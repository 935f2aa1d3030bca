package practice

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// Store persists practice sessions and signups in a local JSON file. Records
// are append-only from the application's point of view: sessions are updated
// in place on completion but never deleted.
type Store struct {
	path  string
	clock clockwork.Clock

	mu   sync.Mutex
	data storeData
}

type storeData struct {
	Sessions []models.PracticeSession `json:"sessions"`
	Signups  []models.PracticeSignup  `json:"signups"`
}

// NewStore opens or creates the practice store at path
func NewStore(path string, clock clockwork.Clock) (*Store, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	s := &Store{path: path, clock: clock}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return apperrors.Wrap(apperrors.KindConfig, "read practice store", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.data); err != nil {
		return apperrors.Wrap(apperrors.KindConfig, "parse practice store", err)
	}
	return nil
}

// flush writes the store atomically so a crash mid-write cannot corrupt it
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnknown, "marshal practice store", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return apperrors.Wrap(apperrors.KindConfig, "create practice store dir", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.KindTransient, "write practice store", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return apperrors.Wrap(apperrors.KindTransient, "replace practice store", err)
	}
	return nil
}

// StartSession records a new practice attempt
func (s *Store) StartSession(ctx context.Context, playerName string) (*models.PracticeSession, error) {
	if playerName == "" {
		return nil, apperrors.Validation("player name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := models.PracticeSession{
		ID:         uuid.New().String(),
		PlayerName: playerName,
		StartedAt:  s.clock.Now(),
	}
	s.data.Sessions = append(s.data.Sessions, session)
	if err := s.flush(); err != nil {
		s.data.Sessions = s.data.Sessions[:len(s.data.Sessions)-1]
		return nil, err
	}

	log.Info().Str("session_id", session.ID).Str("player", playerName).Msg("practice session started")
	return &session, nil
}

// CompleteSession records final counters for a session. Completing an
// already-completed session overwrites its counters.
func (s *Store) CompleteSession(ctx context.Context, sessionID string, correct, total, bestStreak int) (*models.PracticeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.data.Sessions {
		if s.data.Sessions[i].ID != sessionID {
			continue
		}
		now := s.clock.Now()
		s.data.Sessions[i].CorrectAnswers = correct
		s.data.Sessions[i].TotalAnswered = total
		s.data.Sessions[i].BestStreak = bestStreak
		s.data.Sessions[i].CompletedAt = &now
		if err := s.flush(); err != nil {
			return nil, err
		}
		session := s.data.Sessions[i]
		return &session, nil
	}
	return nil, apperrors.NotFound("practice session %s not found", sessionID)
}

// AddSignup records a sign-up captured during practice mode
func (s *Store) AddSignup(ctx context.Context, name, contact string) (*models.PracticeSignup, error) {
	if name == "" {
		return nil, apperrors.Validation("signup name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	signup := models.PracticeSignup{
		ID:        uuid.New().String(),
		Name:      name,
		Contact:   contact,
		CreatedAt: s.clock.Now(),
	}
	s.data.Signups = append(s.data.Signups, signup)
	if err := s.flush(); err != nil {
		s.data.Signups = s.data.Signups[:len(s.data.Signups)-1]
		return nil, err
	}
	return &signup, nil
}

// Sessions returns all recorded practice sessions, oldest first
func (s *Store) Sessions(ctx context.Context) ([]models.PracticeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PracticeSession(nil), s.data.Sessions...), nil
}

// Signups returns all recorded signups, oldest first
func (s *Store) Signups(ctx context.Context) ([]models.PracticeSignup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PracticeSignup(nil), s.data.Signups...), nil
}
