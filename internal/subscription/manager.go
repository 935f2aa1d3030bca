package subscription

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Status is the lifecycle state of a game's realtime channel
type Status string

const (
	StatusIdle         Status = "idle"
	StatusSubscribed   Status = "subscribed"
	StatusClosed       Status = "closed"
	StatusChannelError Status = "channel_error"
)

// Channel is one live realtime subscription. Closing it is idempotent.
type Channel interface {
	Close() error
}

// ChannelFactory opens a realtime channel for a game. onChange fires on every
// change notification; onStatus reports channel-level failures and closes.
type ChannelFactory func(ctx context.Context, gameID uuid.UUID, onChange func(), onStatus func(Status, error)) (Channel, error)

// Config configures a subscription manager for one game
type Config struct {
	GameID uuid.UUID
	Open   ChannelFactory

	// Refetch reloads the full collection. Change notifications carry no
	// payload to apply; the collection is always refetched whole.
	Refetch func(ctx context.Context) error

	Clock clockwork.Clock

	// ResubscribeDelay spaces out resubscription attempts after a channel
	// failure. Defaults to 2 seconds.
	ResubscribeDelay time.Duration

	OnConnectionLost func()
	OnReconnected    func()
}

// Manager keeps one realtime channel per game alive across channel errors
// and visibility changes. A channel that errors out is reopened after a
// short delay, but only while the page is visible; a hidden page defers the
// reopen until visibility returns, then resubscribes immediately.
type Manager struct {
	cfg Config
	ctx context.Context

	mu      sync.Mutex
	channel Channel
	status  Status
	visible bool
	closed  bool
	lost    bool
	pending clockwork.Timer
}

// NewManager creates a manager in the idle state. Call Start to subscribe.
func NewManager(cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.ResubscribeDelay == 0 {
		cfg.ResubscribeDelay = 2 * time.Second
	}
	return &Manager{
		cfg:     cfg,
		status:  StatusIdle,
		visible: true,
	}
}

// Start opens the initial channel and performs the first full refetch
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()
	return m.subscribe()
}

// Status returns the current channel status
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// NotifyVisible records that the page regained visibility. A subscription
// lost while hidden is reopened immediately instead of waiting for the
// retry delay.
func (m *Manager) NotifyVisible() {
	m.mu.Lock()
	m.visible = true
	needsResubscribe := !m.closed && m.status != StatusSubscribed
	m.cancelPendingLocked()
	m.mu.Unlock()

	if needsResubscribe {
		log.Info().Str("game_id", m.cfg.GameID.String()).Msg("visibility regained, resubscribing")
		if err := m.subscribe(); err != nil {
			log.Warn().Err(err).Msg("resubscribe on visibility failed")
		}
	}
}

// NotifyHidden records that the page lost visibility. Pending resubscribe
// attempts are cancelled; the channel itself is left open.
func (m *Manager) NotifyHidden() {
	m.mu.Lock()
	m.visible = false
	m.cancelPendingLocked()
	m.mu.Unlock()
}

// Close tears the subscription down for good. A close requested here never
// triggers a resubscribe.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.status = StatusClosed
	m.cancelPendingLocked()
	ch := m.channel
	m.channel = nil
	m.mu.Unlock()

	if ch != nil {
		if err := ch.Close(); err != nil {
			log.Warn().Err(err).Msg("channel close failed")
		}
	}
}

func (m *Manager) subscribe() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	ctx := m.ctx
	old := m.channel
	m.channel = nil
	m.mu.Unlock()

	if old != nil {
		old.Close()
	}

	ch, err := m.cfg.Open(ctx, m.cfg.GameID, m.handleChange, m.handleStatus)
	if err != nil {
		m.handleStatus(StatusChannelError, err)
		return err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		ch.Close()
		return nil
	}
	m.channel = ch
	m.status = StatusSubscribed
	reconnected := m.lost
	m.lost = false
	m.mu.Unlock()

	if reconnected && m.cfg.OnReconnected != nil {
		m.cfg.OnReconnected()
	}

	// Refetch on every (re)subscribe so changes that landed during the gap
	// are never missed
	m.refetch(ctx)
	return nil
}

// handleChange runs on every change notification from the channel
func (m *Manager) handleChange() {
	m.mu.Lock()
	ctx := m.ctx
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}
	m.refetch(ctx)
}

// handleStatus runs when the channel reports an error or an unexpected close
func (m *Manager) handleStatus(status Status, err error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.status = status
	firstLoss := !m.lost
	m.lost = true
	schedule := m.visible && m.pending == nil
	m.mu.Unlock()

	log.Warn().
		Err(err).
		Str("game_id", m.cfg.GameID.String()).
		Str("status", string(status)).
		Msg("realtime channel lost")

	if firstLoss && m.cfg.OnConnectionLost != nil {
		m.cfg.OnConnectionLost()
	}

	if schedule {
		m.scheduleResubscribe()
	}
}

func (m *Manager) scheduleResubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.pending != nil {
		return
	}
	m.pending = m.cfg.Clock.AfterFunc(m.cfg.ResubscribeDelay, func() {
		m.mu.Lock()
		m.pending = nil
		skip := m.closed || !m.visible || m.status == StatusSubscribed
		m.mu.Unlock()
		if skip {
			return
		}
		if err := m.subscribe(); err != nil {
			log.Warn().Err(err).Msg("scheduled resubscribe failed")
		}
	})
}

func (m *Manager) cancelPendingLocked() {
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
	}
}

func (m *Manager) refetch(ctx context.Context) {
	if m.cfg.Refetch == nil {
		return
	}
	if err := m.cfg.Refetch(ctx); err != nil {
		log.Warn().
			Err(err).
			Str("game_id", m.cfg.GameID.String()).
			Msg("collection refetch failed")
	}
}
