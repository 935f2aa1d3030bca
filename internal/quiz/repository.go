package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// Repository implements question set data access over Postgres. Questions
// are stored as a JSONB document per set; sets are small and always read
// whole.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new question set repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const setColumns = "id, title, description, difficulty, category, questions, created_at, updated_at"

func (r *Repository) CreateQuestionSet(ctx context.Context, id uuid.UUID, req CreateQuestionSetRequest) (*models.QuestionSet, error) {
	questionsBytes, err := json.Marshal(req.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		INSERT INTO question_sets (id, title, description, difficulty, category, questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + setColumns
	qs, err := scanQuestionSet(r.db.QueryRowContext(ctx, query, id, req.Title, req.Description, req.Difficulty, req.Category, questionsBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create question set: %w", err)
	}
	return qs, nil
}

func (r *Repository) GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	query := `SELECT ` + setColumns + ` FROM question_sets WHERE id = $1`
	qs, err := scanQuestionSet(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("question set %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question set: %w", err)
	}
	return qs, nil
}

func (r *Repository) ListQuestionSets(ctx context.Context) ([]models.QuestionSet, error) {
	query := `SELECT ` + setColumns + ` FROM question_sets ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list question sets: %w", err)
	}
	defer rows.Close()

	var sets []models.QuestionSet
	for rows.Next() {
		qs, err := scanQuestionSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question set: %w", err)
		}
		sets = append(sets, *qs)
	}
	return sets, rows.Err()
}

func (r *Repository) UpdateQuestionSet(ctx context.Context, id uuid.UUID, req UpdateQuestionSetRequest) (*models.QuestionSet, error) {
	current, err := r.GetQuestionSet(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(current, req)

	questionsBytes, err := json.Marshal(current.Questions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}

	query := `
		UPDATE question_sets
		SET title = $1, description = $2, difficulty = $3, category = $4, questions = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + setColumns
	qs, err := scanQuestionSet(r.db.QueryRowContext(ctx, query,
		current.Title, current.Description, current.Difficulty, current.Category, questionsBytes, id))
	if err != nil {
		return nil, fmt.Errorf("failed to update question set: %w", err)
	}
	return qs, nil
}

func (r *Repository) DeleteQuestionSet(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM question_sets WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete question set: %w", err)
	}
	return nil
}

func applyUpdate(qs *models.QuestionSet, req UpdateQuestionSetRequest) {
	if req.Title != nil {
		qs.Title = *req.Title
	}
	if req.Description != nil {
		qs.Description = *req.Description
	}
	if req.Difficulty != nil {
		qs.Difficulty = *req.Difficulty
	}
	if req.Category != nil {
		qs.Category = *req.Category
	}
	if req.Questions != nil {
		qs.Questions = *req.Questions
	}
}

func scanQuestionSet(row interface{ Scan(...any) error }) (*models.QuestionSet, error) {
	var qs models.QuestionSet
	var questionsBytes []byte
	err := row.Scan(
		&qs.ID,
		&qs.Title,
		&qs.Description,
		&qs.Difficulty,
		&qs.Category,
		&questionsBytes,
		&qs.CreatedAt,
		&qs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questionsBytes, &qs.Questions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal questions: %w", err)
	}
	return &qs, nil
}
