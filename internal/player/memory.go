package player

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// MemoryRepository is the in-memory fallback players store for local demo use
type MemoryRepository struct {
	mu      sync.RWMutex
	players map[uuid.UUID]models.Player
}

// NewMemoryRepository creates an empty in-memory players store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{players: make(map[uuid.UUID]models.Player)}
}

func (r *MemoryRepository) UpsertPlayer(ctx context.Context, req upsertPlayerRequest) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Reuse an existing row keyed by (game, name) to avoid duplicates across
	// reconnect attempts
	for id, p := range r.players {
		if p.GameID == req.GameID && p.Name == req.Name {
			p.IsActive = req.IsActive
			r.players[id] = p
			out := p
			return &out, nil
		}
	}

	p := models.Player{
		ID:       req.ID,
		GameID:   req.GameID,
		Name:     req.Name,
		Team:     req.Team,
		Score:    0,
		IsHost:   req.IsHost,
		IsActive: req.IsActive,
		JoinedAt: time.Now(),
	}
	r.players[p.ID] = p
	out := p
	return &out, nil
}

func (r *MemoryRepository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.players[id]
	if !ok {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	out := p
	return &out, nil
}

func (r *MemoryRepository) GetPlayerByName(ctx context.Context, gameID uuid.UUID, name string) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.GameID == gameID && p.Name == name {
			out := p
			return &out, nil
		}
	}
	return nil, apperrors.NotFound("player %s not found in game %s", name, gameID)
}

func (r *MemoryRepository) ListPlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var players []models.Player
	for _, p := range r.players {
		if p.GameID == gameID {
			players = append(players, p)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		return players[i].JoinedAt.Before(players[j].JoinedAt)
	})
	return players, nil
}

func (r *MemoryRepository) AddScore(ctx context.Context, id uuid.UUID, delta int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	p.Score += delta
	r.players[id] = p
	out := p
	return &out, nil
}

func (r *MemoryRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return apperrors.NotFound("player %s not found", id)
	}
	p.IsActive = active
	r.players[id] = p
	return nil
}

func (r *MemoryRepository) ActivateQueued(ctx context.Context, gameID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.players {
		if p.GameID == gameID && !p.IsActive {
			p.IsActive = true
			r.players[id] = p
		}
	}
	return nil
}
