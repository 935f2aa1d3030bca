package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// EventType identifies a game domain event
type EventType string

const (
	EventTypeGameStarted      EventType = "GameStarted"
	EventTypeGamePaused       EventType = "GamePaused"
	EventTypeGameResumed      EventType = "GameResumed"
	EventTypeGameEnded        EventType = "GameEnded"
	EventTypeQuestionAdvanced EventType = "QuestionAdvanced"
	EventTypePlayerJoined     EventType = "PlayerJoined"
	EventTypeAnswerSubmitted  EventType = "AnswerSubmitted"
	EventTypeScoreUpdated     EventType = "ScoreUpdated"
)

// Event is the envelope published for every game change notification.
// Subscribers refetch the affected collection rather than applying the
// payload incrementally.
type Event struct {
	EventID   string          `json:"eventId"`
	EventType EventType       `json:"eventType"`
	GameID    string          `json:"gameId"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New builds an event envelope with a marshaled payload
func New(eventType EventType, gameID uuid.UUID, payload any) (Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		GameID:    gameID.String(),
		Timestamp: time.Now(),
		Payload:   payloadBytes,
	}, nil
}

// Publisher fans a game event out to every subscribed client
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// SubjectForGame returns the NATS subject carrying events for one game
func SubjectForGame(gameID string) string {
	return fmt.Sprintf("quiz.games.%s", gameID)
}

// NATSPublisher publishes events to a per-game NATS subject
type NATSPublisher struct {
	nc *nats.Conn
}

// NewNATSPublisher creates a publisher over an existing NATS connection
func NewNATSPublisher(nc *nats.Conn) *NATSPublisher {
	return &NATSPublisher{nc: nc}
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := SubjectForGame(event.GameID)
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	log.Debug().
		Str("event_id", event.EventID).
		Str("event_type", string(event.EventType)).
		Str("subject", subject).
		Msg("event published")

	return nil
}

// MockPublisher records events in memory for local demo use and tests
type MockPublisher struct {
	Events []Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (p *MockPublisher) Publish(ctx context.Context, event Event) error {
	p.Events = append(p.Events, event)
	log.Info().
		Str("event_id", event.EventID).
		Str("event_type", string(event.EventType)).
		Str("game_id", event.GameID).
		Msg("publishing event")
	return nil
}
