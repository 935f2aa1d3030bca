package models

import (
	"time"

	"github.com/google/uuid"
)

// OptionLabels are the four fixed option labels every question carries
var OptionLabels = [4]string{"A", "B", "C", "D"}

// QuestionOption is one labeled multiple-choice option
type QuestionOption struct {
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}

// Question is a single multiple-choice question with exactly four labeled
// options and one designated correct label
type Question struct {
	Text         string           `json:"text" yaml:"text"`
	Options      []QuestionOption `json:"options" yaml:"options"`
	CorrectLabel string           `json:"correct_label" yaml:"correct_label"`
	Explanation  string           `json:"explanation" yaml:"explanation"`
}

// QuestionSet is a named collection of questions. Immutable once referenced
// by a started game except through explicit admin edit/delete.
type QuestionSet struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Difficulty  string     `json:"difficulty" yaml:"difficulty"`
	Category    string     `json:"category" yaml:"category"`
	Questions   []Question `json:"questions" yaml:"questions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
