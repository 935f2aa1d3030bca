package phase

// PracticeStats tracks solo-practice accuracy and streaks. The current
// streak resets to zero on a wrong answer; the best streak is the maximum
// the current streak ever reached.
type PracticeStats struct {
	CorrectAnswers int `json:"correct_answers"`
	TotalAnswered  int `json:"total_answered"`
	CurrentStreak  int `json:"current_streak"`
	BestStreak     int `json:"best_streak"`
}

func (s *PracticeStats) record(correct bool) {
	s.TotalAnswered++
	if correct {
		s.CorrectAnswers++
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
	} else {
		s.CurrentStreak = 0
	}
}
