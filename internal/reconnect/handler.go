package reconnect

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/apperrors"
)

// errOffline marks a reconnect attempt skipped because the connectivity
// probe still reports offline
var errOffline = apperrors.New(apperrors.KindTransient, "device offline")

// HandlerConfig configures a visibility-driven reconnect handler
type HandlerConfig struct {
	Clock clockwork.Clock

	// StabilizeDelay holds off reconnecting after visibility returns so a
	// briefly-woken phone that locks again does not trigger spurious work.
	// Defaults to 500ms.
	StabilizeDelay time.Duration

	// WelcomeBackAfter is the minimum hidden duration that warrants a
	// welcome-back notice. Defaults to 30 seconds.
	WelcomeBackAfter time.Duration

	// ClientID keys the snapshot store; Store may be nil to skip snapshots
	ClientID string
	Store    Store

	// TakeSnapshot captures the state to save when the page hides
	TakeSnapshot func() Snapshot

	// Online probes connectivity before reconnecting. A nil probe is treated
	// as always online.
	Online func(ctx context.Context) bool

	// Reconnect resubscribes channels, resyncs timers, and refetches state
	Reconnect func(ctx context.Context) error

	// OnWelcomeBack fires after a successful reconnect when the page was
	// hidden at least WelcomeBackAfter
	OnWelcomeBack func(hiddenFor time.Duration)

	// OnError surfaces probe and reconnect failures
	OnError func(error)
}

// Handler reacts to page visibility changes: it snapshots state on hide and
// runs the reconnect routine on show, after a short stabilization window.
type Handler struct {
	cfg HandlerConfig

	mu       sync.Mutex
	hiddenAt time.Time
	hidden   bool
	pending  clockwork.Timer
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.StabilizeDelay == 0 {
		cfg.StabilizeDelay = 500 * time.Millisecond
	}
	if cfg.WelcomeBackAfter == 0 {
		cfg.WelcomeBackAfter = 30 * time.Second
	}
	return &Handler{cfg: cfg}
}

// OnHidden records the hide time, saves a snapshot, and cancels any pending
// reconnect from a previous visibility flap
func (h *Handler) OnHidden(ctx context.Context) {
	h.mu.Lock()
	h.hidden = true
	h.hiddenAt = h.cfg.Clock.Now()
	if h.pending != nil {
		h.pending.Stop()
		h.pending = nil
	}
	h.mu.Unlock()

	if h.cfg.Store != nil && h.cfg.TakeSnapshot != nil {
		if err := h.cfg.Store.Save(ctx, h.cfg.ClientID, h.cfg.TakeSnapshot()); err != nil {
			log.Warn().Err(err).Str("client_id", h.cfg.ClientID).Msg("snapshot save failed")
		}
	}
}

// OnVisible schedules the reconnect routine after the stabilization delay.
// Another hide before the delay elapses cancels it.
func (h *Handler) OnVisible(ctx context.Context) {
	h.mu.Lock()
	if !h.hidden {
		h.mu.Unlock()
		return
	}
	h.hidden = false
	hiddenFor := h.cfg.Clock.Now().Sub(h.hiddenAt)
	if h.pending != nil {
		h.pending.Stop()
	}
	h.pending = h.cfg.Clock.AfterFunc(h.cfg.StabilizeDelay, func() {
		h.mu.Lock()
		h.pending = nil
		cancelled := h.hidden
		h.mu.Unlock()
		if cancelled {
			return
		}
		h.reconnect(ctx, hiddenFor)
	})
	h.mu.Unlock()
}

// Restore fetches the saved snapshot for this client, nil when none exists
func (h *Handler) Restore(ctx context.Context) (*Snapshot, error) {
	if h.cfg.Store == nil {
		return nil, nil
	}
	return h.cfg.Store.Restore(ctx, h.cfg.ClientID)
}

func (h *Handler) reconnect(ctx context.Context, hiddenFor time.Duration) {
	if h.cfg.Online != nil && !h.cfg.Online(ctx) {
		log.Info().Msg("still offline after visibility change, skipping reconnect")
		h.reportError(errOffline)
		return
	}

	if h.cfg.Reconnect != nil {
		if err := h.cfg.Reconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("reconnect routine failed")
			h.reportError(err)
			return
		}
	}

	log.Info().Dur("hidden_for", hiddenFor).Msg("reconnected after visibility change")

	if hiddenFor >= h.cfg.WelcomeBackAfter && h.cfg.OnWelcomeBack != nil {
		h.cfg.OnWelcomeBack(hiddenFor)
	}
}

func (h *Handler) reportError(err error) {
	if h.cfg.OnError != nil {
		h.cfg.OnError(err)
	}
}
