package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
	"github.com/easternstar/quiz/internal/player"
)

// Client talks to the quiz server's JSON API
type Client struct {
	baseURL string
	client  *http.Client
	headers map[string]string
}

// New creates a client for the server at baseURL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: make(map[string]string),
	}
}

// SetHeader attaches a header to every request, e.g. the admin bearer token
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetTimeout overrides the per-request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// apiError is the server's error body
type apiError struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func kindFromString(s string) apperrors.Kind {
	switch s {
	case "not_found":
		return apperrors.KindNotFound
	case "terminal":
		return apperrors.KindTerminal
	case "transient":
		return apperrors.KindTransient
	case "validation":
		return apperrors.KindValidation
	case "config":
		return apperrors.KindConfig
	default:
		return apperrors.KindUnknown
	}
}

// do sends one JSON request and decodes the response into out when non-nil.
// Error responses come back tagged with the server's error kind so retry
// logic can classify them without message sniffing.
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return apperrors.Transient("request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var serverErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&serverErr); err == nil && serverErr.Error != "" {
			return apperrors.Newf(kindFromString(serverErr.Kind), "%s %s: %s", method, endpoint, serverErr.Error)
		}
		return apperrors.Newf(apperrors.KindUnknown, "%s %s: status %d", method, endpoint, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// JoinGame joins a game by its short code
func (c *Client) JoinGame(ctx context.Context, code, name string, team models.Team) (*player.JoinResult, error) {
	body := struct {
		Code string `json:"code"`
		Name string `json:"name"`
		Team string `json:"team"`
	}{Code: code, Name: name, Team: string(team)}

	var result player.JoinResult
	if err := c.do(ctx, http.MethodPost, "/api/join", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetGame fetches a game by ID
func (c *Client) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	var g models.Game
	if err := c.do(ctx, http.MethodGet, "/api/games/"+id.String(), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGameByCode fetches the most recent game for a join code
func (c *Client) GetGameByCode(ctx context.Context, code string) (*models.Game, error) {
	var g models.Game
	if err := c.do(ctx, http.MethodGet, "/api/games/by-code/"+code, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetQuestionSet fetches a question set by ID
func (c *Client) GetQuestionSet(ctx context.Context, id uuid.UUID) (*models.QuestionSet, error) {
	var qs models.QuestionSet
	if err := c.do(ctx, http.MethodGet, "/api/question-sets/"+id.String(), nil, &qs); err != nil {
		return nil, err
	}
	return &qs, nil
}

// ListPlayers fetches every player in a game
func (c *Client) ListPlayers(ctx context.Context, gameID uuid.UUID) ([]models.Player, error) {
	var players []models.Player
	if err := c.do(ctx, http.MethodGet, "/api/games/"+gameID.String()+"/players", nil, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// TeamScores fetches the live per-team score aggregate for a game
func (c *Client) TeamScores(ctx context.Context, gameID uuid.UUID) (map[models.Team]int, error) {
	var scores map[models.Team]int
	if err := c.do(ctx, http.MethodGet, "/api/games/"+gameID.String()+"/team-scores", nil, &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// SubmitAnswerParams carries one answer submission
type SubmitAnswerParams struct {
	GameID        uuid.UUID
	PlayerID      uuid.UUID
	QuestionIndex int
	Answer        string
	IsCorrect     bool
}

// SubmitAnswer records a player's answer. Repeat submissions for the same
// question return the original row.
func (c *Client) SubmitAnswer(ctx context.Context, params SubmitAnswerParams) (*models.Answer, error) {
	body := struct {
		GameID        string `json:"game_id"`
		PlayerID      string `json:"player_id"`
		QuestionIndex int    `json:"question_index"`
		Answer        string `json:"answer"`
		IsCorrect     bool   `json:"is_correct"`
	}{
		GameID:        params.GameID.String(),
		PlayerID:      params.PlayerID.String(),
		QuestionIndex: params.QuestionIndex,
		Answer:        params.Answer,
		IsCorrect:     params.IsCorrect,
	}

	var ans models.Answer
	if err := c.do(ctx, http.MethodPost, "/api/answers", body, &ans); err != nil {
		return nil, err
	}
	return &ans, nil
}
