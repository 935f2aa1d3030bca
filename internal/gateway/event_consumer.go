package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/events"
)

// ConsumerConfig holds configuration for the NATS event consumer
type ConsumerConfig struct {
	URL           string
	SubjectFilter string // e.g., "quiz.games.>"
	MaxReconnects int
	ReconnectWait time.Duration
}

// DefaultConsumerConfig returns the default consumer configuration
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		URL:           nats.DefaultURL,
		SubjectFilter: "quiz.games.>",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
	}
}

// EventConsumer consumes game events from NATS and broadcasts them to
// WebSocket clients
type EventConsumer struct {
	connectionManager *ConnectionManager
	nc                *nats.Conn
	sub               *nats.Subscription
	config            ConsumerConfig
}

// NewEventConsumer connects to NATS and prepares the consumer
func NewEventConsumer(cm *ConnectionManager, config ConsumerConfig) (*EventConsumer, error) {
	opts := []nats.Option{
		nats.MaxReconnects(config.MaxReconnects),
		nats.ReconnectWait(config.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &EventConsumer{
		connectionManager: cm,
		nc:                nc,
		config:            config,
	}, nil
}

// Conn exposes the underlying NATS connection for sharing with publishers
func (ec *EventConsumer) Conn() *nats.Conn {
	return ec.nc
}

// Start subscribes to the game subject filter and broadcasts every event
// until the context ends
func (ec *EventConsumer) Start(ctx context.Context) error {
	log.Info().
		Str("subject", ec.config.SubjectFilter).
		Msg("starting event consumer")

	messageCh := make(chan *nats.Msg, 100)
	sub, err := ec.nc.ChanSubscribe(ec.config.SubjectFilter, messageCh)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", ec.config.SubjectFilter, err)
	}
	ec.sub = sub

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event consumer shutting down")
			return nil
		case msg := <-messageCh:
			if err := ec.processMessage(msg); err != nil {
				log.Error().
					Err(err).
					Str("subject", msg.Subject).
					Msg("failed to process message")
			}
		}
	}
}

// processMessage decodes one event envelope and fans it out
func (ec *EventConsumer) processMessage(msg *nats.Msg) error {
	var event events.Event
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return fmt.Errorf("unmarshal event envelope: %w", err)
	}

	gameID, err := uuid.Parse(event.GameID)
	if err != nil {
		return fmt.Errorf("parse game ID: %w", err)
	}

	log.Debug().
		Str("event_id", event.EventID).
		Str("game_id", event.GameID).
		Str("event_type", string(event.EventType)).
		Str("subject", msg.Subject).
		Msg("processing game event")

	ec.connectionManager.BroadcastToGame(gameID, &event)
	return nil
}

// Stop gracefully shuts down the event consumer
func (ec *EventConsumer) Stop() error {
	log.Info().Msg("stopping event consumer")

	if ec.sub != nil {
		if err := ec.sub.Unsubscribe(); err != nil {
			log.Warn().Err(err).Msg("unsubscribe failed")
		}
	}
	if ec.nc != nil {
		ec.nc.Close()
	}

	return nil
}
