package phase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/easternstar/quiz/internal/models"
)

func testQuestions(n int) []models.Question {
	questions := make([]models.Question, n)
	for i := range questions {
		questions[i] = models.Question{
			Text: "question",
			Options: []models.QuestionOption{
				{Label: "A", Text: "first"},
				{Label: "B", Text: "second"},
				{Label: "C", Text: "third"},
				{Label: "D", Text: "fourth"},
			},
			CorrectLabel: "B",
			Explanation:  "because",
		}
	}
	return questions
}

type recordingWriter struct {
	calls int
	err   error
}

func (w *recordingWriter) WriteAnswer(ctx context.Context, questionIndex int, option string, correct bool) error {
	w.calls++
	return w.err
}

func newTestMachine(t *testing.T, cfg Config) *Machine {
	t.Helper()
	if cfg.Questions == nil {
		cfg.Questions = testQuestions(3)
	}
	if cfg.QuestionDuration == 0 {
		cfg.QuestionDuration = 30 * time.Second
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewFakeClock()
	}
	m := NewMachine(cfg)
	m.Start()
	t.Cleanup(m.Stop)
	return m
}

func TestSubmitWithoutSelectionIsNoOp(t *testing.T) {
	m := newTestMachine(t, Config{})

	m.Submit(context.Background())

	if got := m.Phase(); got != PhaseQuestion {
		t.Errorf("phase = %s, want question", got)
	}
	if m.Submitted() {
		t.Error("machine should not be submitted")
	}
}

func TestSubmitTransitionsToReveal(t *testing.T) {
	w := &recordingWriter{}
	m := newTestMachine(t, Config{Writer: w})

	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if got := m.Phase(); got != PhaseAnswerReveal {
		t.Errorf("phase = %s, want answer_reveal", got)
	}
	if !m.Submitted() {
		t.Error("machine should be submitted")
	}
	if w.calls != 1 {
		t.Errorf("writer called %d times, want 1", w.calls)
	}
}

func TestSubmitTwiceIsIdempotent(t *testing.T) {
	w := &recordingWriter{}
	m := newTestMachine(t, Config{Writer: w})

	if err := m.Select("A"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())
	m.Submit(context.Background())

	if w.calls != 1 {
		t.Errorf("writer called %d times, want 1 (second submit must have no side effect)", w.calls)
	}
}

func TestSelectAfterSubmitIsRejected(t *testing.T) {
	m := newTestMachine(t, Config{})

	if err := m.Select("A"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if err := m.Select("C"); err == nil {
		t.Error("expected select after submit to be rejected")
	}
	if got := m.Selected(); got != "A" {
		t.Errorf("selected = %q, want unchanged %q", got, "A")
	}
}

func TestFailedWriteDoesNotBlockTransition(t *testing.T) {
	var notified error
	w := &recordingWriter{err: errors.New("network down")}
	m := newTestMachine(t, Config{
		Writer:       w,
		OnWriteError: func(err error) { notified = err },
	})

	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if got := m.Phase(); got != PhaseAnswerReveal {
		t.Errorf("phase = %s, want answer_reveal despite failed write", got)
	}
	if notified == nil {
		t.Error("expected the write failure to be surfaced")
	}
}

func TestTimeUpRevealsWithoutSubmission(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := newTestMachine(t, Config{Clock: clock, QuestionDuration: 10 * time.Second})

	clock.Advance(10 * time.Second)
	m.Timer().Resync()

	if got := m.Phase(); got != PhaseAnswerReveal {
		t.Errorf("phase = %s, want answer_reveal after timeout", got)
	}
	if m.Submitted() {
		t.Error("timeout reveal must not mark the question submitted")
	}
}

func TestAdvanceResetsForNextQuestion(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := newTestMachine(t, Config{Clock: clock, QuestionDuration: 30 * time.Second})

	if err := m.Select("D"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())
	m.MarkTeammateAnswered("p1")

	clock.Advance(12 * time.Second)
	if err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if got := m.Index(); got != 1 {
		t.Errorf("index = %d, want 1", got)
	}
	if got := m.Phase(); got != PhaseQuestion {
		t.Errorf("phase = %s, want question", got)
	}
	if m.Selected() != "" {
		t.Error("selected answer should reset to empty")
	}
	if m.Submitted() {
		t.Error("submitted flag should reset")
	}
	if m.TeammateAnswered("p1") {
		t.Error("teammate answered flags should reset")
	}
	if got := m.Timer().Remaining(); got != 30 {
		t.Errorf("timer remaining after advance = %d, want 30", got)
	}
}

func TestAdvanceFromQuestionPhaseIsRejected(t *testing.T) {
	m := newTestMachine(t, Config{})

	if err := m.Advance(); err == nil {
		t.Error("expected advance during question phase to be rejected")
	}
	if got := m.Index(); got != 0 {
		t.Errorf("index = %d, want 0", got)
	}
}

func TestLastQuestionAdvancesToResults(t *testing.T) {
	m := newTestMachine(t, Config{Questions: testQuestions(1)})

	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())
	if err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}

	if got := m.Phase(); got != PhaseResults {
		t.Errorf("phase = %s, want results", got)
	}

	// Results is terminal: no transition back to question
	if err := m.Advance(); err == nil {
		t.Error("expected advance from results to be rejected")
	}
	if got := m.Phase(); got != PhaseResults {
		t.Errorf("phase = %s, want results to be terminal", got)
	}
}

func TestLeaderboardPhaseBetweenQuestions(t *testing.T) {
	m := newTestMachine(t, Config{Questions: testQuestions(2), ShowLeaderboard: true})

	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got := m.Phase(); got != PhaseLeaderboard {
		t.Fatalf("phase = %s, want leaderboard", got)
	}

	if err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got, want := m.Phase(), PhaseQuestion; got != want {
		t.Errorf("phase = %s, want %s", got, want)
	}
	if got := m.Index(); got != 1 {
		t.Errorf("index = %d, want 1", got)
	}
}

func TestFinalWagerBeforeResults(t *testing.T) {
	m := newTestMachine(t, Config{Questions: testQuestions(1), FinalWager: true})

	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got := m.Phase(); got != PhaseFinalWager {
		t.Fatalf("phase = %s, want final_wager", got)
	}

	if err := m.Advance(); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got := m.Phase(); got != PhaseResults {
		t.Errorf("phase = %s, want results", got)
	}
}

func TestPracticeModeSkipsWriter(t *testing.T) {
	w := &recordingWriter{}
	m := newTestMachine(t, Config{Mode: ModePractice, Writer: w})

	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if w.calls != 0 {
		t.Errorf("writer called %d times in practice mode, want 0", w.calls)
	}
}
