package quiz

import "github.com/easternstar/quiz/internal/models"

// CreateQuestionSetRequest carries a new question set
type CreateQuestionSetRequest struct {
	Title       string
	Description string
	Difficulty  string
	Category    string
	Questions   []models.Question
}

// UpdateQuestionSetRequest carries a partial question set update. Nil fields
// are left unchanged.
type UpdateQuestionSetRequest struct {
	Title       *string
	Description *string
	Difficulty  *string
	Category    *string
	Questions   *[]models.Question
}
