package player

import (
	"context"
	"log"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/events"
	"github.com/easternstar/quiz/internal/models"
	"github.com/easternstar/quiz/internal/teamcfg"
)

// PlayerRepository defines what the player app layer needs from the players store
type PlayerRepository interface {
	UpsertPlayer(ctx context.Context, req upsertPlayerRequest) (*models.Player, error)
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
	GetPlayerByName(ctx context.Context, gameID uuid.UUID, name string) (*models.Player, error)
	ListPlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Player, error)
	AddScore(ctx context.Context, id uuid.UUID, delta int) (*models.Player, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ActivateQueued(ctx context.Context, gameID uuid.UUID) error
}

// GameGetter resolves join codes to game sessions
type GameGetter interface {
	GetGameByCode(ctx context.Context, code string) (*models.Game, error)
}

// App handles player business logic
type App struct {
	repo      PlayerRepository
	games     GameGetter
	publisher events.Publisher
}

// NewApp creates a new player App
func NewApp(repo PlayerRepository, games GameGetter, publisher events.Publisher) *App {
	return &App{
		repo:      repo,
		games:     games,
		publisher: publisher,
	}
}

// JoinGame joins (or rejoins) a player to the game behind a join code.
// Joining a waiting game activates the player immediately; joining a session
// already in progress queues the player until the session ends. Joining a
// finished game is a terminal-state conflict.
func (a *App) JoinGame(ctx context.Context, req JoinGameRequest) (*JoinResult, error) {
	if req.Name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if !teamcfg.Valid(req.Team) {
		return nil, apperrors.Validation("unknown team: %s", req.Team)
	}

	g, err := a.games.GetGameByCode(ctx, req.GameCode)
	if err != nil {
		return nil, err
	}
	if g.Status == models.GameStatusFinished {
		return nil, apperrors.Terminal("game %s is finished", req.GameCode)
	}

	active := g.Status == models.GameStatusWaiting
	p, err := a.repo.UpsertPlayer(ctx, upsertPlayerRequest{
		ID:       uuid.New(),
		GameID:   g.ID,
		Name:     req.Name,
		Team:     req.Team,
		IsHost:   req.IsHost,
		IsActive: active,
	})
	if err != nil {
		return nil, err
	}

	queued := !p.IsActive
	a.publish(ctx, events.EventTypePlayerJoined, g.ID, events.PlayerJoinedPayload{
		GameID:     g.ID.String(),
		PlayerID:   p.ID.String(),
		PlayerName: p.Name,
		Team:       p.Team,
		IsActive:   p.IsActive,
		Queued:     queued,
		JoinedAt:   p.JoinedAt,
	})

	log.Printf("Player %s joined game %s (team %s, queued=%v)", p.Name, g.GameCode, p.Team, queued)
	return &JoinResult{Player: p, Queued: queued}, nil
}

// GetPlayer retrieves a player by ID
func (a *App) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	return a.repo.GetPlayer(ctx, id)
}

// ListPlayers retrieves every player in a game in join order
func (a *App) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	return a.repo.ListPlayersByGame(ctx, gameID)
}

// AwardScore adds a per-player score award for a correct answer
func (a *App) AwardScore(ctx context.Context, id uuid.UUID, amount int) (*models.Player, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("award amount must be positive")
	}

	p, err := a.repo.AddScore(ctx, id, amount)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, events.EventTypeScoreUpdated, p.GameID, events.ScoreUpdatedPayload{
		GameID:   p.GameID.String(),
		PlayerID: p.ID.String(),
		Score:    p.Score,
	})
	return p, nil
}

// TeamScores returns the live per-team totals for a game. Team score is an
// aggregate of member scores, not an independently tracked value.
func (a *App) TeamScores(ctx context.Context, gameID uuid.UUID) (map[models.Team]int, error) {
	players, err := a.repo.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	scores := make(map[models.Team]int, len(teamcfg.All()))
	for _, info := range teamcfg.All() {
		scores[info.ID] = 0
	}
	for _, p := range players {
		scores[p.Team] += p.Score
	}
	return scores, nil
}

// Deactivate marks a player inactive, e.g. when a phone drops off for good
func (a *App) Deactivate(ctx context.Context, id uuid.UUID) error {
	return a.repo.SetActive(ctx, id, false)
}

// ActivateQueued flips every queued player of a game back to active. Called
// when the session ends so queued players are ready for the next round.
func (a *App) ActivateQueued(ctx context.Context, gameID uuid.UUID) error {
	return a.repo.ActivateQueued(ctx, gameID)
}

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
