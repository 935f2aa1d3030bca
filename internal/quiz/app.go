package quiz

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// QuestionSetRepository defines what the quiz app layer needs from the store
type QuestionSetRepository interface {
	CreateQuestionSet(ctx context.Context, id uuid.UUID, req CreateQuestionSetRequest) (*models.QuestionSet, error)
	GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error)
	ListQuestionSets(ctx context.Context) ([]models.QuestionSet, error)
	UpdateQuestionSet(ctx context.Context, id uuid.UUID, req UpdateQuestionSetRequest) (*models.QuestionSet, error)
	DeleteQuestionSet(ctx context.Context, id uuid.UUID) error
}

// App handles question set business logic
type App struct {
	repo QuestionSetRepository
}

// NewApp creates a new quiz App
func NewApp(repo QuestionSetRepository) *App {
	return &App{repo: repo}
}

// CreateQuestionSet validates and stores a new question set
func (a *App) CreateQuestionSet(ctx context.Context, req CreateQuestionSetRequest) (*models.QuestionSet, error) {
	if req.Title == "" {
		return nil, apperrors.Validation("title is required")
	}
	if len(req.Questions) == 0 {
		return nil, apperrors.Validation("a question set needs at least one question")
	}
	for i, q := range req.Questions {
		if err := validateQuestion(q); err != nil {
			return nil, apperrors.Newf(apperrors.KindValidation, "question %d: %v", i+1, err)
		}
	}

	qs, err := a.repo.CreateQuestionSet(ctx, uuid.New(), req)
	if err != nil {
		return nil, err
	}

	log.Printf("Created question set %q with %d questions", qs.Title, len(qs.Questions))
	return qs, nil
}

// GetQuestionSet retrieves a question set by ID
func (a *App) GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	return a.repo.GetQuestionSet(ctx, id)
}

// ListQuestionSets retrieves every question set, newest first
func (a *App) ListQuestionSets(ctx context.Context) ([]models.QuestionSet, error) {
	return a.repo.ListQuestionSets(ctx)
}

// UpdateQuestionSet applies an explicit admin edit
func (a *App) UpdateQuestionSet(ctx context.Context, id uuid.UUID, req UpdateQuestionSetRequest) (*models.QuestionSet, error) {
	if req.Questions != nil {
		for i, q := range *req.Questions {
			if err := validateQuestion(q); err != nil {
				return nil, apperrors.Newf(apperrors.KindValidation, "question %d: %v", i+1, err)
			}
		}
	}
	return a.repo.UpdateQuestionSet(ctx, id, req)
}

// DeleteQuestionSet removes a question set by explicit admin action
func (a *App) DeleteQuestionSet(ctx context.Context, id uuid.UUID) error {
	if _, err := a.repo.GetQuestionSet(ctx, id); err != nil {
		return err
	}
	return a.repo.DeleteQuestionSet(ctx, id)
}

// validateQuestion enforces the four-labeled-options, one-correct-label shape
func validateQuestion(q models.Question) error {
	if q.Text == "" {
		return apperrors.Validation("question text is required")
	}
	if len(q.Options) != len(models.OptionLabels) {
		return apperrors.Validation("expected %d options, got %d", len(models.OptionLabels), len(q.Options))
	}

	labels := make(map[string]bool, len(q.Options))
	for i, opt := range q.Options {
		if opt.Label != models.OptionLabels[i] {
			return apperrors.Validation("option %d must be labeled %s, got %s", i+1, models.OptionLabels[i], opt.Label)
		}
		if opt.Text == "" {
			return apperrors.Validation("option %s has no text", opt.Label)
		}
		labels[opt.Label] = true
	}

	if !labels[q.CorrectLabel] {
		return apperrors.Validation("correct_label %q does not match any option", q.CorrectLabel)
	}
	return nil
}
