package quiz

import (
	"context"
	"testing"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

func validQuestions() []models.Question {
	return []models.Question{
		{
			Text: "Which officer station is associated with the color blue?",
			Options: []models.QuestionOption{
				{Label: "A", Text: "Ruth"},
				{Label: "B", Text: "Adah"},
				{Label: "C", Text: "Esther"},
				{Label: "D", Text: "Martha"},
			},
			CorrectLabel: "B",
			Explanation:  "Adah's point is blue.",
		},
	}
}

func TestCreateAndFetchQuestionSet(t *testing.T) {
	app := NewApp(NewMemoryRepository())
	ctx := context.Background()

	created, err := app.CreateQuestionSet(ctx, CreateQuestionSetRequest{
		Title:     "Officer stations",
		Category:  "ritual",
		Questions: validQuestions(),
	})
	if err != nil {
		t.Fatalf("CreateQuestionSet: %v", err)
	}

	fetched, err := app.GetQuestionSet(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetQuestionSet: %v", err)
	}
	if fetched.Title != "Officer stations" || len(fetched.Questions) != 1 {
		t.Errorf("fetched = %+v", fetched)
	}
}

func TestCreateValidation(t *testing.T) {
	app := NewApp(NewMemoryRepository())
	ctx := context.Background()

	badOrder := validQuestions()
	badOrder[0].Options[0], badOrder[0].Options[1] = badOrder[0].Options[1], badOrder[0].Options[0]

	badCorrect := validQuestions()
	badCorrect[0].CorrectLabel = "E"

	missingOption := validQuestions()
	missingOption[0].Options = missingOption[0].Options[:3]

	emptyOptionText := validQuestions()
	emptyOptionText[0].Options[2].Text = ""

	cases := []struct {
		name string
		req  CreateQuestionSetRequest
	}{
		{"missing title", CreateQuestionSetRequest{Questions: validQuestions()}},
		{"no questions", CreateQuestionSetRequest{Title: "t"}},
		{"options out of label order", CreateQuestionSetRequest{Title: "t", Questions: badOrder}},
		{"correct label not an option", CreateQuestionSetRequest{Title: "t", Questions: badCorrect}},
		{"three options", CreateQuestionSetRequest{Title: "t", Questions: missingOption}},
		{"empty option text", CreateQuestionSetRequest{Title: "t", Questions: emptyOptionText}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := app.CreateQuestionSet(ctx, tc.req); apperrors.KindOf(err) != apperrors.KindValidation {
				t.Errorf("err kind = %v, want validation", apperrors.KindOf(err))
			}
		})
	}
}

func TestUpdateQuestionSet(t *testing.T) {
	app := NewApp(NewMemoryRepository())
	ctx := context.Background()

	created, err := app.CreateQuestionSet(ctx, CreateQuestionSetRequest{
		Title:     "Before",
		Questions: validQuestions(),
	})
	if err != nil {
		t.Fatalf("CreateQuestionSet: %v", err)
	}

	newTitle := "After"
	updated, err := app.UpdateQuestionSet(ctx, created.ID, UpdateQuestionSetRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("UpdateQuestionSet: %v", err)
	}
	if updated.Title != "After" {
		t.Errorf("title = %q, want After", updated.Title)
	}
	if len(updated.Questions) != 1 {
		t.Error("questions should be unchanged by a title-only update")
	}

	bad := validQuestions()
	bad[0].Text = ""
	if _, err := app.UpdateQuestionSet(ctx, created.ID, UpdateQuestionSetRequest{Questions: &bad}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("err kind = %v, want validation", apperrors.KindOf(err))
	}
}

func TestDeleteQuestionSet(t *testing.T) {
	app := NewApp(NewMemoryRepository())
	ctx := context.Background()

	created, err := app.CreateQuestionSet(ctx, CreateQuestionSetRequest{
		Title:     "To delete",
		Questions: validQuestions(),
	})
	if err != nil {
		t.Fatalf("CreateQuestionSet: %v", err)
	}

	if err := app.DeleteQuestionSet(ctx, created.ID); err != nil {
		t.Fatalf("DeleteQuestionSet: %v", err)
	}
	if _, err := app.GetQuestionSet(ctx, created.ID); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("err kind = %v, want not_found", apperrors.KindOf(err))
	}
	if err := app.DeleteQuestionSet(ctx, created.ID); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("double delete err kind = %v, want not_found", apperrors.KindOf(err))
	}
}

func TestImportSetYAML(t *testing.T) {
	app := NewApp(NewMemoryRepository())
	ctx := context.Background()

	doc := []byte(`
title: Heroines
category: history
questions:
  - text: Who gleaned in the fields of Boaz?
    options:
      - label: A
        text: Adah
      - label: B
        text: Ruth
      - label: C
        text: Esther
      - label: D
        text: Electa
    correct_label: B
    explanation: Ruth the gleaner.
`)

	set, err := app.ImportSetYAML(ctx, doc)
	if err != nil {
		t.Fatalf("ImportSetYAML: %v", err)
	}
	if set.Title != "Heroines" || set.Questions[0].CorrectLabel != "B" {
		t.Errorf("imported = %+v", set)
	}
}

func TestImportSetYAMLRejectsMalformedAndInvalid(t *testing.T) {
	app := NewApp(NewMemoryRepository())
	ctx := context.Background()

	if _, err := app.ImportSetYAML(ctx, []byte("{not yaml")); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("malformed err kind = %v, want validation", apperrors.KindOf(err))
	}

	// Parses but fails set validation
	if _, err := app.ImportSetYAML(ctx, []byte("title: empty\n")); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("invalid err kind = %v, want validation", apperrors.KindOf(err))
	}
}
