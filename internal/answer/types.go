package answer

import "github.com/google/uuid"

// SubmitAnswerRequest records one player's submission for one question
type SubmitAnswerRequest struct {
	GameID        uuid.UUID
	PlayerID      uuid.UUID
	QuestionIndex int
	Answer        string
	IsCorrect     bool
}
