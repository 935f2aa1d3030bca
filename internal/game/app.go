package game

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/events"
	"github.com/easternstar/quiz/internal/models"
)

// maxCodeAttempts bounds generation-time collision checks before giving up
// to the store's uniqueness constraint
const maxCodeAttempts = 5

// GameRepository defines what the game app layer needs from the games store
type GameRepository interface {
	CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error)
	GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetGameByCode(ctx context.Context, code string) (*models.Game, error)
	UpdateGameStatus(ctx context.Context, id uuid.UUID, req UpdateGameStatusRequest) (*models.Game, error)
	AdvanceQuestion(ctx context.Context, id uuid.UUID, fromIndex int) (*models.Game, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
}

// PlayerActivator activates queued players when a session ends
type PlayerActivator interface {
	ActivateQueued(ctx context.Context, gameID uuid.UUID) error
}

// App handles game session business logic
type App struct {
	repo      GameRepository
	players   PlayerActivator
	publisher events.Publisher
}

// NewApp creates a new game App
func NewApp(repo GameRepository, players PlayerActivator, publisher events.Publisher) *App {
	return &App{
		repo:      repo,
		players:   players,
		publisher: publisher,
	}
}

// CreateGame creates a new waiting game with a freshly generated join code
func (a *App) CreateGame(ctx context.Context, hostID uuid.UUID, questionSetID *uuid.UUID) (*models.Game, error) {
	if hostID == uuid.Nil {
		return nil, apperrors.Validation("host_id is required")
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := NewJoinCode()
		if existing, err := a.repo.GetGameByCode(ctx, code); err == nil && existing.Status != models.GameStatusFinished {
			// Code is held by a live game, draw again
			continue
		}

		g, err := a.repo.CreateGame(ctx, CreateGameRequest{
			ID:            uuid.New(),
			GameCode:      code,
			HostID:        hostID,
			QuestionSetID: questionSetID,
		})
		if err != nil {
			lastErr = err
			continue
		}

		log.Printf("Created game %s with code %s", g.ID, g.GameCode)
		return g, nil
	}

	return nil, fmt.Errorf("failed to create game after %d attempts: %w", maxCodeAttempts, lastErr)
}

// GetGame retrieves a game by ID
func (a *App) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	return a.repo.GetGame(ctx, id)
}

// GetGameByCode retrieves the most recent game for a join code
func (a *App) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	if len(code) != codeLength {
		return nil, apperrors.Validation("join code must be %d characters", codeLength)
	}
	return a.repo.GetGameByCode(ctx, code)
}

// StartGame transitions a waiting game to active
func (a *App) StartGame(ctx context.Context, id uuid.UUID, totalQuestions int) (*models.Game, error) {
	g, err := a.transitionStatus(ctx, id, models.GameStatusActive)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, events.EventTypeGameStarted, g.ID, events.GameStartedPayload{
		GameID:         g.ID.String(),
		GameCode:       g.GameCode,
		TotalQuestions: totalQuestions,
		StartedAt:      time.Now(),
	})
	return g, nil
}

// PauseGame transitions an active game to paused
func (a *App) PauseGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, err := a.transitionStatus(ctx, id, models.GameStatusPaused)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, events.EventTypeGamePaused, g.ID, events.GamePausedPayload{
		GameID:   g.ID.String(),
		PausedAt: time.Now(),
	})
	return g, nil
}

// ResumeGame transitions a paused game back to active
func (a *App) ResumeGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	current, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.GameStatusPaused {
		return nil, apperrors.Terminal("can only resume a paused game, current status is %s", current.Status)
	}

	g, err := a.repo.UpdateGameStatus(ctx, id, UpdateGameStatusRequest{Status: models.GameStatusActive})
	if err != nil {
		return nil, fmt.Errorf("failed to resume game: %w", err)
	}

	a.publish(ctx, events.EventTypeGameResumed, g.ID, events.GameResumedPayload{
		GameID:    g.ID.String(),
		ResumedAt: time.Now(),
	})
	return g, nil
}

// EndGame transitions a game to finished and activates every queued player
// so they are ready for the next round
func (a *App) EndGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	g, err := a.transitionStatus(ctx, id, models.GameStatusFinished)
	if err != nil {
		return nil, err
	}

	if err := a.players.ActivateQueued(ctx, g.ID); err != nil {
		// The game is already finished; queued activation is best effort
		log.Printf("Failed to activate queued players for game %s: %v", g.ID, err)
	}

	a.publish(ctx, events.EventTypeGameEnded, g.ID, events.GameEndedPayload{
		GameID:  g.ID.String(),
		EndedAt: time.Now(),
	})
	return g, nil
}

// AdvanceQuestion moves the game to the next question. The index only ever
// increases by exactly one, and never once the session is finished.
func (a *App) AdvanceQuestion(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	current, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.GameStatusFinished {
		return nil, apperrors.Terminal("game %s is finished", id)
	}

	g, err := a.repo.AdvanceQuestion(ctx, id, current.CurrentQuestion)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, events.EventTypeQuestionAdvanced, g.ID, events.QuestionAdvancedPayload{
		GameID:          g.ID.String(),
		CurrentQuestion: g.CurrentQuestion,
		AdvancedAt:      time.Now(),
	})
	return g, nil
}

// DeleteGame deletes a game session
func (a *App) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if _, err := a.repo.GetGame(ctx, id); err != nil {
		return err
	}
	return a.repo.DeleteGame(ctx, id)
}

func (a *App) transitionStatus(ctx context.Context, id uuid.UUID, status models.GameStatus) (*models.Game, error) {
	current, err := a.repo.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateStatusTransition(current.Status, status); err != nil {
		return nil, err
	}

	g, err := a.repo.UpdateGameStatus(ctx, id, UpdateGameStatusRequest{Status: status})
	if err != nil {
		return nil, fmt.Errorf("failed to update game status: %w", err)
	}

	log.Printf("Updated game status: %s -> %s", current.Status, status)
	return g, nil
}

// validateStatusTransition validates if a status transition is allowed
func validateStatusTransition(currentStatus, newStatus models.GameStatus) error {
	if currentStatus == newStatus {
		return nil
	}

	allowedTransitions := map[models.GameStatus][]models.GameStatus{
		models.GameStatusWaiting:  {models.GameStatusActive, models.GameStatusFinished},
		models.GameStatusActive:   {models.GameStatusPaused, models.GameStatusFinished},
		models.GameStatusPaused:   {models.GameStatusActive, models.GameStatusFinished},
		models.GameStatusFinished: {},
	}

	allowedNext, exists := allowedTransitions[currentStatus]
	if !exists {
		return apperrors.Validation("unknown game status: %s", currentStatus)
	}

	for _, allowed := range allowedNext {
		if newStatus == allowed {
			return nil
		}
	}

	return apperrors.Terminal("transition from %s to %s is not allowed", currentStatus, newStatus)
}

// publish sends a domain event; a publish failure never fails the operation
func (a *App) publish(ctx context.Context, eventType events.EventType, gameID uuid.UUID, payload any) {
	event, err := events.New(eventType, gameID, payload)
	if err != nil {
		log.Printf("Failed to build %s event: %v", eventType, err)
		return
	}
	if err := a.publisher.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
