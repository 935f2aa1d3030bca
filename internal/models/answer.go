package models

import (
	"time"

	"github.com/google/uuid"
)

// Answer is an append-only record of one player's submission for one
// question ordinal. At most one row exists per (player, question).
type Answer struct {
	ID            uuid.UUID `json:"id"`
	GameID        uuid.UUID `json:"game_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	QuestionIndex int       `json:"question_index"`
	Answer        string    `json:"answer"`
	IsCorrect     bool      `json:"is_correct"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
