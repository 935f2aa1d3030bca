package quiz

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// MemoryRepository is the in-memory fallback question set store
type MemoryRepository struct {
	mu   sync.RWMutex
	sets map[uuid.UUID]models.QuestionSet
}

// NewMemoryRepository creates an empty in-memory question set store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sets: make(map[uuid.UUID]models.QuestionSet)}
}

func (r *MemoryRepository) CreateQuestionSet(ctx context.Context, id uuid.UUID, req CreateQuestionSetRequest) (*models.QuestionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	qs := models.QuestionSet{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Category:    req.Category,
		Questions:   req.Questions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.sets[id] = qs
	out := qs
	return &out, nil
}

func (r *MemoryRepository) GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	qs, ok := r.sets[id]
	if !ok {
		return nil, apperrors.NotFound("question set %s not found", id)
	}
	out := qs
	return &out, nil
}

func (r *MemoryRepository) ListQuestionSets(ctx context.Context) ([]models.QuestionSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sets := make([]models.QuestionSet, 0, len(r.sets))
	for _, qs := range r.sets {
		sets = append(sets, qs)
	}
	sort.Slice(sets, func(i, j int) bool {
		return sets[i].CreatedAt.After(sets[j].CreatedAt)
	})
	return sets, nil
}

func (r *MemoryRepository) UpdateQuestionSet(ctx context.Context, id uuid.UUID, req UpdateQuestionSetRequest) (*models.QuestionSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	qs, ok := r.sets[id]
	if !ok {
		return nil, apperrors.NotFound("question set %s not found", id)
	}
	applyUpdate(&qs, req)
	qs.UpdatedAt = time.Now()
	r.sets[id] = qs
	out := qs
	return &out, nil
}

func (r *MemoryRepository) DeleteQuestionSet(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, id)
	return nil
}
