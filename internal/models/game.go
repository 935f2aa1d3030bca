package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game session
type GameStatus string

const (
	GameStatusWaiting  GameStatus = "waiting"
	GameStatusActive   GameStatus = "active"
	GameStatusPaused   GameStatus = "paused"
	GameStatusFinished GameStatus = "finished"
)

// Game represents one play of the trivia game from creation to finish,
// identified by a short join code
type Game struct {
	ID              uuid.UUID  `json:"id"`
	GameCode        string     `json:"game_code"`
	Status          GameStatus `json:"status"`
	CurrentQuestion int        `json:"current_question"`
	HostID          uuid.UUID  `json:"host_id"`
	QuestionSetID   *uuid.UUID `json:"question_set_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
