package quiz

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// questionSetFile mirrors the on-disk YAML question file layout
type questionSetFile struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Difficulty  string            `yaml:"difficulty"`
	Category    string            `yaml:"category"`
	Questions   []models.Question `yaml:"questions"`
}

// LoadSetFromYAML parses a question file and stores it as a new question
// set, applying the same validation as a hand-entered set
func (a *App) LoadSetFromYAML(ctx context.Context, path string) (*models.QuestionSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question file: %w", err)
	}
	return a.ImportSetYAML(ctx, data)
}

// ImportSetYAML parses YAML question set content and stores it
func (a *App) ImportSetYAML(ctx context.Context, data []byte) (*models.QuestionSet, error) {
	var file questionSetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "malformed question file", err)
	}

	return a.CreateQuestionSet(ctx, CreateQuestionSetRequest{
		Title:       file.Title,
		Description: file.Description,
		Difficulty:  file.Difficulty,
		Category:    file.Category,
		Questions:   file.Questions,
	})
}
