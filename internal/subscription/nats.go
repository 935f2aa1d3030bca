package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/events"
)

// natsChannel wraps a core NATS subscription on the game's event subject.
// Connection-level state changes are forwarded as channel status updates.
type natsChannel struct {
	sub    *nats.Subscription
	stopCh chan struct{}
}

// NATSChannelFactory builds a ChannelFactory over an established NATS
// connection. Every message on the game subject counts as one change
// notification; the payload is ignored because the manager refetches the
// whole collection anyway.
func NATSChannelFactory(nc *nats.Conn) ChannelFactory {
	return func(ctx context.Context, gameID uuid.UUID, onChange func(), onStatus func(Status, error)) (Channel, error) {
		if nc == nil || !nc.IsConnected() {
			return nil, errors.New("nats connection unavailable")
		}

		subject := events.SubjectForGame(gameID.String())
		sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
			log.Debug().Str("subject", msg.Subject).Msg("change notification received")
			onChange()
		})
		if err != nil {
			return nil, err
		}

		ch := &natsChannel{
			sub:    sub,
			stopCh: make(chan struct{}),
		}

		statusCh := nc.StatusChanged(nats.DISCONNECTED, nats.CLOSED)
		go func() {
			for {
				select {
				case <-ch.stopCh:
					return
				case <-ctx.Done():
					return
				case s, ok := <-statusCh:
					if !ok {
						return
					}
					switch s {
					case nats.CLOSED:
						onStatus(StatusClosed, errors.New("nats connection closed"))
						return
					case nats.DISCONNECTED:
						onStatus(StatusChannelError, errors.New("nats connection lost"))
						return
					}
				}
			}
		}()

		return ch, nil
	}
}

func (c *natsChannel) Close() error {
	select {
	case <-c.stopCh:
	default:
		close(c.stopCh)
	}
	if c.sub == nil || !c.sub.IsValid() {
		return nil
	}
	return c.sub.Unsubscribe()
}
