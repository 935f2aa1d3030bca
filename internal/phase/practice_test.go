package phase

import (
	"context"
	"testing"
)

// answerSequence submits one answer per question, correct or not, advancing
// between questions
func answerSequence(t *testing.T, m *Machine, results []bool) {
	t.Helper()
	for i, correct := range results {
		option := "B" // testQuestions marks B correct
		if !correct {
			option = "A"
		}
		if err := m.Select(option); err != nil {
			t.Fatalf("question %d Select: %v", i, err)
		}
		m.Submit(context.Background())
		if i < len(results)-1 {
			if err := m.Advance(); err != nil {
				t.Fatalf("question %d Advance: %v", i, err)
			}
		}
	}
}

func TestPracticeStreakTracking(t *testing.T) {
	m := newTestMachine(t, Config{Mode: ModePractice, Questions: testQuestions(4)})

	answerSequence(t, m, []bool{true, true, false, true})

	stats := m.Practice()
	if stats.CurrentStreak != 1 {
		t.Errorf("CurrentStreak = %d, want 1", stats.CurrentStreak)
	}
	if stats.BestStreak != 2 {
		t.Errorf("BestStreak = %d, want 2", stats.BestStreak)
	}
	if stats.CorrectAnswers != 3 {
		t.Errorf("CorrectAnswers = %d, want 3", stats.CorrectAnswers)
	}
	if stats.TotalAnswered != 4 {
		t.Errorf("TotalAnswered = %d, want 4", stats.TotalAnswered)
	}
}

func TestPracticeStreakResetsOnWrong(t *testing.T) {
	m := newTestMachine(t, Config{Mode: ModePractice, Questions: testQuestions(3)})

	answerSequence(t, m, []bool{true, false, false})

	stats := m.Practice()
	if stats.CurrentStreak != 0 {
		t.Errorf("CurrentStreak = %d, want 0", stats.CurrentStreak)
	}
	if stats.BestStreak != 1 {
		t.Errorf("BestStreak = %d, want 1", stats.BestStreak)
	}
}

func TestPracticeStatsStartAtZero(t *testing.T) {
	m := newTestMachine(t, Config{Mode: ModePractice})

	stats := m.Practice()
	if stats != (PracticeStats{}) {
		t.Errorf("fresh stats = %+v, want all zero", stats)
	}
}
