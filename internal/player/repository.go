package player

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
)

// Repository implements player data access over Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new players repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const playerColumns = "id, game_id, name, team, score, is_host, is_active, joined_at"

// UpsertPlayer inserts a player or, when a row already exists for
// (game_id, name), reactivates that row instead of creating a duplicate
func (r *Repository) UpsertPlayer(ctx context.Context, req upsertPlayerRequest) (*models.Player, error) {
	query := `
		INSERT INTO players (id, game_id, name, team, score, is_host, is_active, joined_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6, NOW())
		ON CONFLICT (game_id, name) DO UPDATE SET is_active = EXCLUDED.is_active
		RETURNING ` + playerColumns
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, req.ID, req.GameID, req.Name, req.Team, req.IsHost, req.IsActive))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert player: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (r *Repository) GetPlayerByName(ctx context.Context, gameID uuid.UUID, name string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 AND name = $2`
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, gameID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("player %s not found in game %s", name, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player by name: %w", err)
	}
	return p, nil
}

func (r *Repository) ListPlayersByGame(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE game_id = $1 ORDER BY joined_at ASC`
	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (r *Repository) AddScore(ctx context.Context, id uuid.UUID, delta int) (*models.Player, error) {
	query := `UPDATE players SET score = score + $1 WHERE id = $2 RETURNING ` + playerColumns
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, delta, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("player %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add score: %w", err)
	}
	return p, nil
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE players SET is_active = $1 WHERE id = $2`, active, id); err != nil {
		return fmt.Errorf("failed to set player active flag: %w", err)
	}
	return nil
}

// ActivateQueued flips every inactive player of a game back to active
func (r *Repository) ActivateQueued(ctx context.Context, gameID uuid.UUID) error {
	query := `UPDATE players SET is_active = TRUE WHERE game_id = $1 AND is_active = FALSE`
	if _, err := r.db.ExecContext(ctx, query, gameID); err != nil {
		return fmt.Errorf("failed to activate queued players: %w", err)
	}
	return nil
}

func scanPlayer(row interface{ Scan(...any) error }) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID,
		&p.GameID,
		&p.Name,
		&p.Team,
		&p.Score,
		&p.IsHost,
		&p.IsActive,
		&p.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
