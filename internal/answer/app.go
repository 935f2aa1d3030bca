package answer

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/events"
	"github.com/easternstar/quiz/internal/models"
)

// AnswerRepository defines what the answer app layer needs from the answers store
type AnswerRepository interface {
	InsertAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.Answer, bool, error)
	ListAnswersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Answer, error)
	ListAnswersByQuestion(ctx context.Context, gameID uuid.UUID, questionIndex int) ([]models.Answer, error)
}

// ScoreAwarder applies the per-player award for a correct answer
type ScoreAwarder interface {
	AwardScore(ctx context.Context, playerID uuid.UUID, amount int) (*models.Player, error)
}

// App handles answer business logic
type App struct {
	repo        AnswerRepository
	scores      ScoreAwarder
	publisher   events.Publisher
	awardAmount int
}

// NewApp creates a new answer App with the fixed per-question award amount
func NewApp(repo AnswerRepository, scores ScoreAwarder, publisher events.Publisher, awardAmount int) *App {
	return &App{
		repo:        repo,
		scores:      scores,
		publisher:   publisher,
		awardAmount: awardAmount,
	}
}

// SubmitAnswer records a player's submission. Scoring is per-player: a
// correct answer increments the submitting player's cumulative score by the
// fixed award amount. A repeat submission for the same question returns the
// original row and awards nothing.
func (a *App) SubmitAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.Answer, error) {
	if req.GameID == uuid.Nil || req.PlayerID == uuid.Nil {
		return nil, apperrors.Validation("game_id and player_id are required")
	}
	if req.QuestionIndex < 0 {
		return nil, apperrors.Validation("question_index cannot be negative")
	}
	if req.Answer == "" {
		return nil, apperrors.Validation("answer is required")
	}

	ans, inserted, err := a.repo.InsertAnswer(ctx, req)
	if err != nil {
		return nil, err
	}

	// A reused row means this question was already answered; skip the award
	if inserted && ans.IsCorrect {
		if _, err := a.scores.AwardScore(ctx, ans.PlayerID, a.awardAmount); err != nil {
			// The answer row is already durable; the score catches up on the
			// next correct submission or an admin adjustment
			log.Printf("Failed to award score to player %s: %v", ans.PlayerID, err)
		}
	}

	event, err := events.New(events.EventTypeAnswerSubmitted, ans.GameID, events.AnswerSubmittedPayload{
		GameID:        ans.GameID.String(),
		PlayerID:      ans.PlayerID.String(),
		QuestionIndex: ans.QuestionIndex,
		IsCorrect:     ans.IsCorrect,
		SubmittedAt:   ans.SubmittedAt,
	})
	if err == nil {
		if err := a.publisher.Publish(ctx, event); err != nil {
			log.Printf("Failed to publish AnswerSubmitted event: %v", err)
		}
	}

	return ans, nil
}

// ListAnswers retrieves every answer of a game in submission order
func (a *App) ListAnswers(ctx context.Context, gameID uuid.UUID) ([]models.Answer, error) {
	return a.repo.ListAnswersByGame(ctx, gameID)
}

// ListAnswersForQuestion retrieves the answers for one question ordinal
func (a *App) ListAnswersForQuestion(ctx context.Context, gameID uuid.UUID, questionIndex int) ([]models.Answer, error) {
	return a.repo.ListAnswersByQuestion(ctx, gameID, questionIndex)
}
