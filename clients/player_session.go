package clients

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
	"github.com/easternstar/quiz/internal/phase"
	"github.com/easternstar/quiz/internal/reconnect"
	"github.com/easternstar/quiz/internal/subscription"
)

// SessionConfig wires one player's live view of a game session
type SessionConfig struct {
	Client    *Client
	Game      *models.Game
	Player    *models.Player
	Questions []models.Question

	// QuestionDuration is the per-question countdown. Defaults to 30 seconds.
	QuestionDuration time.Duration

	Clock clockwork.Clock

	// OpenChannel opens the realtime change channel, normally
	// subscription.NATSChannelFactory over the server's NATS connection
	OpenChannel subscription.ChannelFactory

	// Snapshots persists session state across phone locks; nil skips snapshots
	Snapshots reconnect.Store

	OnConnectionLost func()
	OnReconnected    func()
	OnWelcomeBack    func(hiddenFor time.Duration)
	OnError          func(error)
}

// PlayerSession is the client-side play loop: the phase machine driving what
// the player sees, a realtime subscription that refetches scores on every
// change notification, and a visibility handler that resyncs the countdown
// and state after the phone wakes up.
type PlayerSession struct {
	cfg SessionConfig

	machine    *phase.Machine
	subs       *subscription.Manager
	visibility *reconnect.Handler
}

// sessionSnapshot is the state persisted when the page hides
type sessionSnapshot struct {
	GameID        uuid.UUID `json:"game_id"`
	PlayerID      uuid.UUID `json:"player_id"`
	QuestionIndex int       `json:"question_index"`
	Phase         string    `json:"phase"`
	Selected      string    `json:"selected,omitempty"`
}

// NewPlayerSession assembles the session. Call Start to begin playing.
func NewPlayerSession(cfg SessionConfig) (*PlayerSession, error) {
	if cfg.Client == nil || cfg.Game == nil || cfg.Player == nil {
		return nil, apperrors.Validation("client, game, and player are required")
	}
	if len(cfg.Questions) == 0 {
		return nil, apperrors.Validation("session needs at least one question")
	}
	if cfg.OpenChannel == nil {
		return nil, apperrors.Validation("a channel factory is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.QuestionDuration == 0 {
		cfg.QuestionDuration = 30 * time.Second
	}

	s := &PlayerSession{cfg: cfg}

	s.machine = phase.NewMachine(phase.Config{
		Questions:        cfg.Questions,
		QuestionDuration: cfg.QuestionDuration,
		Mode:             phase.ModeMultiplayer,
		Clock:            cfg.Clock,
		Writer: &apiAnswerWriter{
			client:   cfg.Client,
			gameID:   cfg.Game.ID,
			playerID: cfg.Player.ID,
		},
		OnWriteError: s.reportError,
	})

	s.subs = subscription.NewManager(subscription.Config{
		GameID:           cfg.Game.ID,
		Open:             cfg.OpenChannel,
		Refetch:          s.refetchScores,
		Clock:            cfg.Clock,
		OnConnectionLost: cfg.OnConnectionLost,
		OnReconnected:    cfg.OnReconnected,
	})

	s.visibility = reconnect.NewHandler(reconnect.HandlerConfig{
		Clock:         cfg.Clock,
		ClientID:      cfg.Player.ID.String(),
		Store:         cfg.Snapshots,
		TakeSnapshot:  s.snapshot,
		Reconnect:     s.resync,
		OnWelcomeBack: cfg.OnWelcomeBack,
		OnError:       s.reportError,
	})

	return s, nil
}

// Start subscribes to the game's change channel and begins the countdown for
// the first question
func (s *PlayerSession) Start(ctx context.Context) error {
	s.machine.Start()
	return s.subs.Start(ctx)
}

// Stop tears the session down; call on navigation away
func (s *PlayerSession) Stop() {
	s.subs.Close()
	s.machine.Stop()
}

// Machine exposes the phase machine for select/submit/advance and reads
func (s *PlayerSession) Machine() *phase.Machine {
	return s.machine
}

// Restore fetches the snapshot saved before the last hide, nil when none
func (s *PlayerSession) Restore(ctx context.Context) (*reconnect.Snapshot, error) {
	return s.visibility.Restore(ctx)
}

// Hidden handles the page losing visibility: the snapshot is saved and
// pending resubscribe attempts stand down
func (s *PlayerSession) Hidden(ctx context.Context) {
	s.subs.NotifyHidden()
	s.visibility.OnHidden(ctx)
}

// Visible handles the page regaining visibility: a lost subscription reopens
// immediately, and after a short stabilization window the countdown resyncs
// and the collection refetches
func (s *PlayerSession) Visible(ctx context.Context) {
	s.subs.NotifyVisible()
	s.visibility.OnVisible(ctx)
}

// refetchScores reloads the whole team score collection. Change
// notifications carry no payload to apply.
func (s *PlayerSession) refetchScores(ctx context.Context) error {
	scores, err := s.cfg.Client.TeamScores(ctx, s.cfg.Game.ID)
	if err != nil {
		return err
	}
	byTeam := make(map[string]int, len(scores))
	for team, score := range scores {
		byTeam[string(team)] = score
	}
	s.machine.SetScores(byTeam)
	return nil
}

// resync runs after visibility stabilizes: the wall-clock countdown is
// recomputed and the score collection refetched with retries
func (s *PlayerSession) resync(ctx context.Context) error {
	s.machine.Timer().Resync()
	return reconnect.RetryOperation(ctx, s.cfg.Clock, s.refetchScores, 3, time.Second)
}

func (s *PlayerSession) snapshot() reconnect.Snapshot {
	state, err := json.Marshal(sessionSnapshot{
		GameID:        s.cfg.Game.ID,
		PlayerID:      s.cfg.Player.ID,
		QuestionIndex: s.machine.Index(),
		Phase:         string(s.machine.Phase()),
		Selected:      s.machine.Selected(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal session snapshot")
	}
	return reconnect.Snapshot{
		State:     state,
		Timestamp: s.cfg.Clock.Now(),
		Page:      "game",
	}
}

func (s *PlayerSession) reportError(err error) {
	if s.cfg.OnError != nil {
		s.cfg.OnError(err)
	}
}

// apiAnswerWriter persists submissions through the server's answers endpoint
type apiAnswerWriter struct {
	client   *Client
	gameID   uuid.UUID
	playerID uuid.UUID
}

func (w *apiAnswerWriter) WriteAnswer(ctx context.Context, questionIndex int, option string, correct bool) error {
	_, err := w.client.SubmitAnswer(ctx, SubmitAnswerParams{
		GameID:        w.gameID,
		PlayerID:      w.playerID,
		QuestionIndex: questionIndex,
		Answer:        option,
		IsCorrect:     correct,
	})
	return err
}
