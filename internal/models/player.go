package models

import (
	"time"

	"github.com/google/uuid"
)

// Team identifies one of the five fixed factions players are grouped into
type Team string

const (
	TeamAdah   Team = "adah"
	TeamRuth   Team = "ruth"
	TeamEsther Team = "esther"
	TeamMartha Team = "martha"
	TeamElecta Team = "electa"
)

// Player represents a participant in a game session. A player who joins a
// game already in progress is held queued (IsActive=false) until the session
// ends and a new one begins.
type Player struct {
	ID       uuid.UUID `json:"id"`
	GameID   uuid.UUID `json:"game_id"`
	Name     string    `json:"name"`
	Team     Team      `json:"team"`
	Score    int       `json:"score"`
	IsHost   bool      `json:"is_host"`
	IsActive bool      `json:"is_active"`
	JoinedAt time.Time `json:"joined_at"`
}
