package models

import "time"

// PracticeSession tracks one solo-practice attempt. Practice records live in
// local storage only and are never synchronized across clients.
type PracticeSession struct {
	ID             string     `json:"id"`
	PlayerName     string     `json:"player_name"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalAnswered  int        `json:"total_answered"`
	BestStreak     int        `json:"best_streak"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// PracticeSignup is a sign-up request captured during practice mode
type PracticeSignup struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}
