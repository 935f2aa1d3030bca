package player

import (
	"github.com/google/uuid"
	"github.com/easternstar/quiz/internal/models"
)

// JoinGameRequest carries a join attempt for a game identified by code
type JoinGameRequest struct {
	GameCode string
	Name     string
	Team     models.Team
	IsHost   bool
}

// JoinResult is the outcome of a join: the player row plus whether the
// player was queued because the session was already in progress
type JoinResult struct {
	Player *models.Player `json:"player"`
	Queued bool           `json:"queued"`
}

// upsertPlayerRequest is the repository-level write for a join. One player
// row is reused across reconnect attempts keyed by (game, name).
type upsertPlayerRequest struct {
	ID       uuid.UUID
	GameID   uuid.UUID
	Name     string
	Team     models.Team
	IsHost   bool
	IsActive bool
}
