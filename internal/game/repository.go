package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// Repository implements game data access over Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new games repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	query := `
		INSERT INTO games (id, game_code, status, current_question, host_id, question_set_id, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, NOW(), NOW())
		RETURNING id, game_code, status, current_question, host_id, question_set_id, created_at, updated_at
	`
	row := r.db.QueryRowContext(ctx, query, req.ID, req.GameCode, models.GameStatusWaiting, req.HostID, req.QuestionSetID)
	g, err := scanGame(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return g, nil
}

func (r *Repository) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `
		SELECT id, game_code, status, current_question, host_id, question_set_id, created_at, updated_at
		FROM games WHERE id = $1
	`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("game %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

func (r *Repository) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	query := `
		SELECT id, game_code, status, current_question, host_id, question_set_id, created_at, updated_at
		FROM games WHERE game_code = $1
		ORDER BY created_at DESC LIMIT 1
	`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("game with code %s not found", code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by code: %w", err)
	}
	return g, nil
}

func (r *Repository) UpdateGameStatus(ctx context.Context, id uuid.UUID, req UpdateGameStatusRequest) (*models.Game, error) {
	query := `
		UPDATE games SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, game_code, status, current_question, host_id, question_set_id, created_at, updated_at
	`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, req.Status, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("game %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update game status: %w", err)
	}
	return g, nil
}

// AdvanceQuestion increments current_question by exactly one. The WHERE
// clause keeps the advance monotonic even under concurrent host actions.
func (r *Repository) AdvanceQuestion(ctx context.Context, id uuid.UUID, fromIndex int) (*models.Game, error) {
	query := `
		UPDATE games SET current_question = current_question + 1, updated_at = NOW()
		WHERE id = $1 AND current_question = $2 AND status <> $3
		RETURNING id, game_code, status, current_question, host_id, question_set_id, created_at, updated_at
	`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, id, fromIndex, models.GameStatusFinished))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Terminal("game %s cannot advance from question %d", id, fromIndex)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to advance question: %w", err)
	}
	return g, nil
}

func (r *Repository) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*models.Game, error) {
	var g models.Game
	var questionSetID uuid.NullUUID
	err := row.Scan(
		&g.ID,
		&g.GameCode,
		&g.Status,
		&g.CurrentQuestion,
		&g.HostID,
		&questionSetID,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if questionSetID.Valid {
		g.QuestionSetID = &questionSetID.UUID
	}
	return &g, nil
}
