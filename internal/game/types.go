package game

import (
	"github.com/google/uuid"
	"github.com/easternstar/quiz/internal/models"
)

// CreateGameRequest carries everything needed to create a game session
type CreateGameRequest struct {
	ID            uuid.UUID
	GameCode      string
	HostID        uuid.UUID
	QuestionSetID *uuid.UUID
}

// UpdateGameStatusRequest updates the lifecycle status of a game
type UpdateGameStatusRequest struct {
	Status models.GameStatus
}
