package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
	"github.com/easternstar/quiz/internal/phase"
	"github.com/easternstar/quiz/internal/reconnect"
	"github.com/easternstar/quiz/internal/subscription"
)

type fakeChannel struct{}

func (fakeChannel) Close() error { return nil }

type fakeFactory struct {
	mu       sync.Mutex
	onChange func()
	opened   int
}

func (f *fakeFactory) open(ctx context.Context, gameID uuid.UUID, onChange func(), onStatus func(subscription.Status, error)) (subscription.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onChange = onChange
	f.opened++
	return fakeChannel{}, nil
}

func (f *fakeFactory) change() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type submittedAnswer struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
}

// testServer is a stand-in quiz server covering the endpoints the session
// touches: team scores and answer submission
type testServer struct {
	srv *httptest.Server

	mu           sync.Mutex
	scores       map[models.Team]int
	answers      []submittedAnswer
	answerStatus int
	answerKind   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{scores: map[models.Team]int{models.TeamAdah: 100}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/games/{id}/team-scores", func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ts.scores)
	})
	mux.HandleFunc("POST /api/answers", func(w http.ResponseWriter, r *http.Request) {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		if ts.answerStatus != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(ts.answerStatus)
			json.NewEncoder(w).Encode(map[string]string{"error": "game already finished", "kind": ts.answerKind})
			return
		}
		var sub submittedAnswer
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode answer body: %v", err)
		}
		ts.answers = append(ts.answers, sub)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.Answer{
			ID:            uuid.New(),
			QuestionIndex: sub.QuestionIndex,
			Answer:        sub.Answer,
			IsCorrect:     sub.IsCorrect,
			SubmittedAt:   time.Now(),
		})
	})

	ts.srv = httptest.NewServer(mux)
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) setScores(scores map[models.Team]int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.scores = scores
}

func (ts *testServer) failAnswers(status int, kind string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.answerStatus = status
	ts.answerKind = kind
}

func (ts *testServer) submitted() []submittedAnswer {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]submittedAnswer(nil), ts.answers...)
}

func sessionQuestions() []models.Question {
	return []models.Question{
		{
			Text: "Which heroine gleaned in the fields of Boaz?",
			Options: []models.QuestionOption{
				{Label: "A", Text: "Adah"},
				{Label: "B", Text: "Ruth"},
				{Label: "C", Text: "Esther"},
				{Label: "D", Text: "Electa"},
			},
			CorrectLabel: "B",
		},
		{
			Text: "Which color belongs to Electa?",
			Options: []models.QuestionOption{
				{Label: "A", Text: "Red"},
				{Label: "B", Text: "Blue"},
				{Label: "C", Text: "White"},
				{Label: "D", Text: "Green"},
			},
			CorrectLabel: "A",
		},
	}
}

func newTestSession(t *testing.T, ts *testServer, clock clockwork.Clock, onWelcomeBack func(time.Duration), onError func(error)) (*PlayerSession, *fakeFactory) {
	t.Helper()
	gameID := uuid.New()
	factory := &fakeFactory{}

	session, err := NewPlayerSession(SessionConfig{
		Client: New(ts.srv.URL),
		Game:   &models.Game{ID: gameID, GameCode: "AB3", Status: models.GameStatusActive},
		Player: &models.Player{
			ID:     uuid.New(),
			GameID: gameID,
			Name:   "Jo",
			Team:   models.TeamAdah,
		},
		Questions:        sessionQuestions(),
		QuestionDuration: 30 * time.Second,
		Clock:            clock,
		OpenChannel:      factory.open,
		Snapshots:        reconnect.NewMemoryStore(),
		OnWelcomeBack:    onWelcomeBack,
		OnError:          onError,
	})
	if err != nil {
		t.Fatalf("NewPlayerSession: %v", err)
	}
	t.Cleanup(session.Stop)
	return session, factory
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStartRefetchesScores(t *testing.T) {
	ts := newTestServer(t)
	session, factory := newTestSession(t, ts, clockwork.NewFakeClock(), nil, nil)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	factory.mu.Lock()
	opened := factory.opened
	factory.mu.Unlock()
	if opened != 1 {
		t.Errorf("channel opened %d times, want 1", opened)
	}
	if got := session.Machine().Scores()["adah"]; got != 100 {
		t.Errorf("adah score = %d, want 100 from the initial refetch", got)
	}
}

func TestChangeNotificationRefetchesScores(t *testing.T) {
	ts := newTestServer(t)
	session, factory := newTestSession(t, ts, clockwork.NewFakeClock(), nil, nil)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ts.setScores(map[models.Team]int{models.TeamAdah: 300, models.TeamRuth: 200})
	factory.change()

	waitFor(t, func() bool {
		scores := session.Machine().Scores()
		return scores["adah"] == 300 && scores["ruth"] == 200
	}, "scores were not refetched after the change notification")
}

func TestSubmitPersistsAnswerThroughAPI(t *testing.T) {
	ts := newTestServer(t)
	session, _ := newTestSession(t, ts, clockwork.NewFakeClock(), nil, nil)

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m := session.Machine()
	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	if m.Phase() != phase.PhaseAnswerReveal {
		t.Errorf("phase = %s after submit, want answer_reveal", m.Phase())
	}

	submitted := ts.submitted()
	if len(submitted) != 1 {
		t.Fatalf("server received %d answers, want 1", len(submitted))
	}
	if submitted[0].QuestionIndex != 0 || submitted[0].Answer != "B" || !submitted[0].IsCorrect {
		t.Errorf("submitted = %+v, want question 0, answer B, correct", submitted[0])
	}
}

func TestFailedAnswerWriteSurfacesTaggedError(t *testing.T) {
	ts := newTestServer(t)
	ts.failAnswers(http.StatusConflict, "terminal")

	var mu sync.Mutex
	var reported error
	session, _ := newTestSession(t, ts, clockwork.NewFakeClock(), nil, func(err error) {
		mu.Lock()
		reported = err
		mu.Unlock()
	})

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m := session.Machine()
	if err := m.Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	m.Submit(context.Background())

	// The reveal stands even though the write failed
	if m.Phase() != phase.PhaseAnswerReveal {
		t.Errorf("phase = %s after failed write, want answer_reveal", m.Phase())
	}

	mu.Lock()
	defer mu.Unlock()
	if reported == nil {
		t.Fatal("write failure was not reported")
	}
	if apperrors.KindOf(reported) != apperrors.KindTerminal {
		t.Errorf("reported err kind = %v, want terminal from the server body", apperrors.KindOf(reported))
	}
}

func TestLongHideTriggersWelcomeBackAndRefetch(t *testing.T) {
	ts := newTestServer(t)
	clock := clockwork.NewFakeClock()

	var mu sync.Mutex
	var welcomedAfter time.Duration
	session, _ := newTestSession(t, ts, clock, func(hiddenFor time.Duration) {
		mu.Lock()
		welcomedAfter = hiddenFor
		mu.Unlock()
	}, nil)

	ctx := context.Background()
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	session.Hidden(ctx)
	clock.Advance(40 * time.Second)

	ts.setScores(map[models.Team]int{models.TeamAdah: 500})
	session.Visible(ctx)
	clock.Advance(500 * time.Millisecond)

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return welcomedAfter == 40*time.Second
	}, "welcome-back did not fire after a 40s hide")

	waitFor(t, func() bool {
		return session.Machine().Scores()["adah"] == 500
	}, "scores were not refetched on reconnect")
}

func TestShortHideSkipsWelcomeBack(t *testing.T) {
	ts := newTestServer(t)
	clock := clockwork.NewFakeClock()

	var mu sync.Mutex
	welcomed := false
	session, _ := newTestSession(t, ts, clock, func(time.Duration) {
		mu.Lock()
		welcomed = true
		mu.Unlock()
	}, nil)

	ctx := context.Background()
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	ts.setScores(map[models.Team]int{models.TeamAdah: 500})
	session.Hidden(ctx)
	clock.Advance(5 * time.Second)
	session.Visible(ctx)
	clock.Advance(500 * time.Millisecond)

	// The reconnect refetch still runs; only the notice is suppressed
	waitFor(t, func() bool {
		return session.Machine().Scores()["adah"] == 500
	}, "scores were not refetched on reconnect")

	mu.Lock()
	defer mu.Unlock()
	if welcomed {
		t.Error("welcome-back fired for a 5s hide")
	}
}

func TestSnapshotSavedOnHide(t *testing.T) {
	ts := newTestServer(t)
	session, _ := newTestSession(t, ts, clockwork.NewFakeClock(), nil, nil)

	ctx := context.Background()
	if err := session.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := session.Machine().Select("B"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	session.Hidden(ctx)

	snap, err := session.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if snap == nil {
		t.Fatal("no snapshot saved on hide")
	}
	if snap.Page != "game" {
		t.Errorf("snapshot page = %q, want game", snap.Page)
	}

	var state sessionSnapshot
	if err := json.Unmarshal(snap.State, &state); err != nil {
		t.Fatalf("unmarshal snapshot state: %v", err)
	}
	if state.QuestionIndex != 0 || state.Selected != "B" {
		t.Errorf("snapshot state = %+v, want question 0 with selection B", state)
	}
}
