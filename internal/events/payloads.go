package events

import (
	"time"

	"github.com/easternstar/quiz/internal/models"
)

// Event payload types shared between the app layers and the gateway

// GameStartedPayload is the payload for a GameStarted event
type GameStartedPayload struct {
	GameID         string    `json:"game_id"`
	GameCode       string    `json:"game_code"`
	TotalQuestions int       `json:"total_questions"`
	StartedAt      time.Time `json:"started_at"`
}

// GamePausedPayload is the payload for a GamePaused event
type GamePausedPayload struct {
	GameID   string    `json:"game_id"`
	PausedAt time.Time `json:"paused_at"`
}

// GameResumedPayload is the payload for a GameResumed event
type GameResumedPayload struct {
	GameID    string    `json:"game_id"`
	ResumedAt time.Time `json:"resumed_at"`
}

// GameEndedPayload is the payload for a GameEnded event
type GameEndedPayload struct {
	GameID  string    `json:"game_id"`
	EndedAt time.Time `json:"ended_at"`
}

// QuestionAdvancedPayload is the payload for a QuestionAdvanced event
type QuestionAdvancedPayload struct {
	GameID          string    `json:"game_id"`
	CurrentQuestion int       `json:"current_question"`
	AdvancedAt      time.Time `json:"advanced_at"`
}

// PlayerJoinedPayload is the payload for a PlayerJoined event
type PlayerJoinedPayload struct {
	GameID     string      `json:"game_id"`
	PlayerID   string      `json:"player_id"`
	PlayerName string      `json:"player_name"`
	Team       models.Team `json:"team"`
	IsActive   bool        `json:"is_active"`
	Queued     bool        `json:"queued"`
	JoinedAt   time.Time   `json:"joined_at"`
}

// AnswerSubmittedPayload is the payload for an AnswerSubmitted event
type AnswerSubmittedPayload struct {
	GameID        string    `json:"game_id"`
	PlayerID      string    `json:"player_id"`
	QuestionIndex int       `json:"question_index"`
	IsCorrect     bool      `json:"is_correct"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ScoreUpdatedPayload is the payload for a ScoreUpdated event
type ScoreUpdatedPayload struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	Score    int    `json:"score"`
}
