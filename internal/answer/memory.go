package answer

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/models"
)

// MemoryRepository is the in-memory fallback answers store for local demo use
type MemoryRepository struct {
	mu      sync.RWMutex
	answers []models.Answer
}

// NewMemoryRepository creates an empty in-memory answers store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) InsertAnswer(ctx context.Context, req SubmitAnswerRequest) (*models.Answer, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// At most one answer per (player, question); the first submission wins
	for _, a := range r.answers {
		if a.PlayerID == req.PlayerID && a.QuestionIndex == req.QuestionIndex {
			out := a
			return &out, false, nil
		}
	}

	a := models.Answer{
		ID:            uuid.New(),
		GameID:        req.GameID,
		PlayerID:      req.PlayerID,
		QuestionIndex: req.QuestionIndex,
		Answer:        req.Answer,
		IsCorrect:     req.IsCorrect,
		SubmittedAt:   time.Now(),
	}
	r.answers = append(r.answers, a)
	out := a
	return &out, true, nil
}

func (r *MemoryRepository) ListAnswersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Answer
	for _, a := range r.answers {
		if a.GameID == gameID {
			out = append(out, a)
		}
	}
	sortBySubmittedAt(out)
	return out, nil
}

func (r *MemoryRepository) ListAnswersByQuestion(ctx context.Context, gameID uuid.UUID, questionIndex int) ([]models.Answer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.Answer
	for _, a := range r.answers {
		if a.GameID == gameID && a.QuestionIndex == questionIndex {
			out = append(out, a)
		}
	}
	sortBySubmittedAt(out)
	return out, nil
}

func sortBySubmittedAt(answers []models.Answer) {
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].SubmittedAt.Before(answers[j].SubmittedAt)
	})
}
