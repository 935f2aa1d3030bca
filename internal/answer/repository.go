package answer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/models"
)

// Repository implements answer data access over Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new answers repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const answerColumns = "id, game_id, player_id, question_index, answer, is_correct, submitted_at"

// InsertAnswer appends an answer row. A second submission for the same
// (player, question) is swallowed by the conflict clause and the original
// row is returned with inserted=false, keeping submission idempotent.
func (r *Repository) InsertAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.Answer, bool, error) {
	query := `
		INSERT INTO answers (id, game_id, player_id, question_index, answer, is_correct, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (player_id, question_index) DO NOTHING
		RETURNING ` + answerColumns
	a, err := scanAnswer(r.db.QueryRowContext(ctx, query, uuid.New(), req.GameID, req.PlayerID, req.QuestionIndex, req.Answer, req.IsCorrect))
	if errors.Is(err, sql.ErrNoRows) {
		// Conflict path: the original submission stands
		existing, err := r.getByPlayerQuestion(ctx, req.PlayerID, req.QuestionIndex)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert answer: %w", err)
	}
	return a, true, nil
}

func (r *Repository) getByPlayerQuestion(ctx context.Context, playerID uuid.UUID, questionIndex int) (*models.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE player_id = $1 AND question_index = $2`
	a, err := scanAnswer(r.db.QueryRowContext(ctx, query, playerID, questionIndex))
	if err != nil {
		return nil, fmt.Errorf("failed to get existing answer: %w", err)
	}
	return a, nil
}

func (r *Repository) ListAnswersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE game_id = $1 ORDER BY submitted_at ASC`
	return r.listAnswers(ctx, query, gameID)
}

func (r *Repository) ListAnswersByQuestion(ctx context.Context, gameID uuid.UUID, questionIndex int) ([]models.Answer, error) {
	query := `SELECT ` + answerColumns + ` FROM answers WHERE game_id = $1 AND question_index = $2 ORDER BY submitted_at ASC`
	return r.listAnswers(ctx, query, gameID, questionIndex)
}

func (r *Repository) listAnswers(ctx context.Context, query string, args ...any) ([]models.Answer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		answers = append(answers, *a)
	}
	return answers, rows.Err()
}

func scanAnswer(row interface{ Scan(...any) error }) (*models.Answer, error) {
	var a models.Answer
	err := row.Scan(
		&a.ID,
		&a.GameID,
		&a.PlayerID,
		&a.QuestionIndex,
		&a.Answer,
		&a.IsCorrect,
		&a.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
