package game

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// MemoryRepository is the in-memory fallback store used when no database is
// configured, keeping the game usable for local demo play. It is constructed
// explicitly and injected; there is no ambient singleton.
type MemoryRepository struct {
	mu    sync.RWMutex
	games map[uuid.UUID]models.Game
}

// NewMemoryRepository creates an empty in-memory games store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{games: make(map[uuid.UUID]models.Game)}
}

func (r *MemoryRepository) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range r.games {
		if g.GameCode == req.GameCode && g.Status != models.GameStatusFinished {
			return nil, apperrors.Validation("game code %s already in use", req.GameCode)
		}
	}

	now := time.Now()
	g := models.Game{
		ID:              req.ID,
		GameCode:        req.GameCode,
		Status:          models.GameStatusWaiting,
		CurrentQuestion: 0,
		HostID:          req.HostID,
		QuestionSetID:   req.QuestionSetID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.games[g.ID] = g
	out := g
	return &out, nil
}

func (r *MemoryRepository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[id]
	if !ok {
		return nil, apperrors.NotFound("game %s not found", id)
	}
	out := g
	return &out, nil
}

func (r *MemoryRepository) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.Game
	for _, g := range r.games {
		if g.GameCode != code {
			continue
		}
		g := g
		if latest == nil || g.CreatedAt.After(latest.CreatedAt) {
			latest = &g
		}
	}
	if latest == nil {
		return nil, apperrors.NotFound("game with code %s not found", code)
	}
	return latest, nil
}

func (r *MemoryRepository) UpdateGameStatus(ctx context.Context, id uuid.UUID, req UpdateGameStatusRequest) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, apperrors.NotFound("game %s not found", id)
	}
	g.Status = req.Status
	g.UpdatedAt = time.Now()
	r.games[id] = g
	out := g
	return &out, nil
}

func (r *MemoryRepository) AdvanceQuestion(ctx context.Context, id uuid.UUID, fromIndex int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return nil, apperrors.NotFound("game %s not found", id)
	}
	if g.Status == models.GameStatusFinished || g.CurrentQuestion != fromIndex {
		return nil, apperrors.Terminal("game %s cannot advance from question %d", id, fromIndex)
	}
	g.CurrentQuestion++
	g.UpdatedAt = time.Now()
	r.games[id] = g
	out := g
	return &out, nil
}

func (r *MemoryRepository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.games, id)
	return nil
}
