package phase

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/countdown"
	"github.com/easternstar/quiz/internal/models"
)

// Phase is the UI state within an active question cycle
type Phase string

const (
	PhaseQuestion     Phase = "question"
	PhaseAnswerReveal Phase = "answer_reveal"
	PhaseLeaderboard  Phase = "leaderboard"
	PhaseFinalWager   Phase = "final_wager"
	PhaseResults      Phase = "results"
)

// Mode selects multiplayer (answers persisted, per-player scoring) or
// practice (local counters only, no network writes)
type Mode int

const (
	ModeMultiplayer Mode = iota
	ModePractice
)

// AnswerWriter persists a submission in multiplayer mode
type AnswerWriter interface {
	WriteAnswer(ctx context.Context, questionIndex int, option string, correct bool) error
}

// Config configures a play session's state machine
type Config struct {
	Questions        []models.Question
	QuestionDuration time.Duration
	Mode             Mode
	Clock            clockwork.Clock

	// Writer persists answers in multiplayer mode; ignored in practice mode
	Writer AnswerWriter
	// OnWriteError surfaces a failed answer write as a recoverable
	// notification. The phase transition has already happened by then and
	// is never rolled back.
	OnWriteError func(error)
	// ShowLeaderboard inserts a leaderboard phase between reveal and the
	// next question
	ShowLeaderboard bool
	// FinalWager inserts a final-wager phase after the last reveal
	FinalWager bool
}

// Machine drives what the player sees during a play session and enforces
// one submission per question. It is created when a play session mounts and
// discarded on navigation away.
type Machine struct {
	cfg   Config
	timer *countdown.Timer

	mu               sync.Mutex
	index            int
	phase            Phase
	selected         string
	submitted        bool
	teammateAnswered map[string]bool
	scores           map[string]int
	practice         PracticeStats
}

// NewMachine creates a machine positioned on the first question. Call Start
// to begin the countdown.
func NewMachine(cfg Config) *Machine {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	m := &Machine{
		cfg:              cfg,
		phase:            PhaseQuestion,
		teammateAnswered: make(map[string]bool),
		scores:           make(map[string]int),
	}
	m.timer = countdown.New(cfg.Clock, cfg.QuestionDuration, m.handleTimeUp, nil)
	return m
}

// Start activates the countdown for the current question
func (m *Machine) Start() {
	m.timer.Activate()
}

// Stop tears down the countdown; call when the session unmounts
func (m *Machine) Stop() {
	m.timer.Stop()
}

// Timer exposes the session countdown, e.g. for visibility resyncs
func (m *Machine) Timer() *countdown.Timer {
	return m.timer
}

// Select stores the player's chosen option. Selecting after submission is
// rejected and leaves state unchanged.
func (m *Machine) Select(option string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseQuestion {
		return apperrors.Validation("cannot select during %s phase", m.phase)
	}
	if m.submitted {
		return apperrors.Validation("answer already submitted")
	}
	m.selected = option
	return nil
}

// Submit locks in the selected answer and reveals the correct one.
// Submitting with nothing selected is a no-op, as is submitting twice.
func (m *Machine) Submit(ctx context.Context) {
	m.mu.Lock()
	if m.submitted || m.selected == "" || m.phase != PhaseQuestion {
		m.mu.Unlock()
		return
	}

	question := m.cfg.Questions[m.index]
	correct := m.selected == question.CorrectLabel
	m.submitted = true
	m.phase = PhaseAnswerReveal

	if m.cfg.Mode == ModePractice {
		m.practice.record(correct)
	}
	index := m.index
	option := m.selected
	m.mu.Unlock()

	if m.cfg.Mode == ModeMultiplayer && m.cfg.Writer != nil {
		// The phase has already advanced optimistically; a failed write is
		// surfaced as a recoverable notification, never a rollback
		if err := m.cfg.Writer.WriteAnswer(ctx, index, option, correct); err != nil {
			log.Warn().Err(err).Int("question", index).Msg("answer write failed")
			if m.cfg.OnWriteError != nil {
				m.cfg.OnWriteError(err)
			}
		}
	}
}

// handleTimeUp force-reveals when the countdown expires before submission
func (m *Machine) handleTimeUp() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase == PhaseQuestion && !m.submitted {
		m.phase = PhaseAnswerReveal
	}
}

// Advance moves past the reveal: into the leaderboard or final wager when
// configured, then to the next question, or to results after the last one.
// Host-driven in multiplayer, self-driven in practice.
func (m *Machine) Advance() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	last := m.index == len(m.cfg.Questions)-1

	switch m.phase {
	case PhaseAnswerReveal:
		if last && m.cfg.FinalWager {
			m.phase = PhaseFinalWager
			return nil
		}
		if !last && m.cfg.ShowLeaderboard {
			m.phase = PhaseLeaderboard
			return nil
		}
	case PhaseLeaderboard:
		// fall through to the next question
	case PhaseFinalWager:
		m.phase = PhaseResults
		return nil
	default:
		return apperrors.Validation("cannot advance from %s phase", m.phase)
	}

	if last {
		m.phase = PhaseResults
		return nil
	}

	m.index++
	m.phase = PhaseQuestion
	m.selected = ""
	m.submitted = false
	m.teammateAnswered = make(map[string]bool)
	m.timer.Reset(0)
	return nil
}

// MarkTeammateAnswered records that a teammate has locked in this question
func (m *Machine) MarkTeammateAnswered(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teammateAnswered[playerID] = true
}

// TeammateAnswered reports whether a teammate has answered this question
func (m *Machine) TeammateAnswered(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.teammateAnswered[playerID]
}

// SetScores replaces the local score snapshot mirrored from a refetch
func (m *Machine) SetScores(scores map[string]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = make(map[string]int, len(scores))
	for k, v := range scores {
		m.scores[k] = v
	}
}

// Scores returns a copy of the local score snapshot
func (m *Machine) Scores() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.scores))
	for k, v := range m.scores {
		out[k] = v
	}
	return out
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Index returns the current question index
func (m *Machine) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Selected returns the currently selected option, empty when none
func (m *Machine) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Submitted reports whether the current question has been submitted
func (m *Machine) Submitted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitted
}

// Practice returns a copy of the practice-mode counters
func (m *Machine) Practice() PracticeStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.practice
}
