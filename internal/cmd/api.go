package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/easternstar/quiz/internal/answer"
	"github.com/easternstar/quiz/internal/apperrors"
	"github.com/easternstar/quiz/internal/models"
	"github.com/easternstar/quiz/internal/player"
	"github.com/easternstar/quiz/internal/quiz"
	"github.com/easternstar/quiz/internal/reconnect"
	"github.com/easternstar/quiz/internal/teamcfg"
)

// registerAPI wires the JSON API onto the mux
func registerAPI(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("POST /api/games", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			HostID        string `json:"host_id"`
			QuestionSetID string `json:"question_set_id"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		hostID, err := uuid.Parse(req.HostID)
		if err != nil {
			writeError(w, apperrors.Validation("invalid host_id"))
			return
		}
		var questionSetID *uuid.UUID
		if req.QuestionSetID != "" {
			id, err := uuid.Parse(req.QuestionSetID)
			if err != nil {
				writeError(w, apperrors.Validation("invalid question_set_id"))
				return
			}
			questionSetID = &id
		}
		g, err := services.Games.CreateGame(r.Context(), hostID, questionSetID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	})

	mux.HandleFunc("GET /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		g, err := services.Games.GetGame(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	})

	mux.HandleFunc("GET /api/games/by-code/{code}", func(w http.ResponseWriter, r *http.Request) {
		g, err := services.Games.GetGameByCode(r.Context(), r.PathValue("code"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	})

	mux.HandleFunc("POST /api/games/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		var req struct {
			TotalQuestions int `json:"total_questions"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		g, err := services.Games.StartGame(r.Context(), id, req.TotalQuestions)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	})

	mux.HandleFunc("POST /api/games/{id}/pause", gameTransition(services, func(r *http.Request, id uuid.UUID) (*models.Game, error) {
		return services.Games.PauseGame(r.Context(), id)
	}))
	mux.HandleFunc("POST /api/games/{id}/resume", gameTransition(services, func(r *http.Request, id uuid.UUID) (*models.Game, error) {
		return services.Games.ResumeGame(r.Context(), id)
	}))
	mux.HandleFunc("POST /api/games/{id}/end", gameTransition(services, func(r *http.Request, id uuid.UUID) (*models.Game, error) {
		return services.Games.EndGame(r.Context(), id)
	}))
	mux.HandleFunc("POST /api/games/{id}/advance", gameTransition(services, func(r *http.Request, id uuid.UUID) (*models.Game, error) {
		return services.Games.AdvanceQuestion(r.Context(), id)
	}))

	mux.HandleFunc("DELETE /api/games/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		if err := services.Games.DeleteGame(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/join", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code   string `json:"code"`
			Name   string `json:"name"`
			Team   string `json:"team"`
			IsHost bool   `json:"is_host"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		result, err := services.Players.JoinGame(r.Context(), player.JoinGameRequest{
			GameCode: strings.ToUpper(strings.TrimSpace(req.Code)),
			Name:     req.Name,
			Team:     models.Team(req.Team),
			IsHost:   req.IsHost,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("GET /api/games/{id}/players", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		players, err := services.Players.ListPlayers(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
	})

	mux.HandleFunc("GET /api/games/{id}/team-scores", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		scores, err := services.Players.TeamScores(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	})

	mux.HandleFunc("GET /api/teams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, teamcfg.All())
	})

	mux.HandleFunc("POST /api/answers", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			GameID        string `json:"game_id"`
			PlayerID      string `json:"player_id"`
			QuestionIndex int    `json:"question_index"`
			Answer        string `json:"answer"`
			IsCorrect     bool   `json:"is_correct"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		gameID, err := uuid.Parse(req.GameID)
		if err != nil {
			writeError(w, apperrors.Validation("invalid game_id"))
			return
		}
		playerID, err := uuid.Parse(req.PlayerID)
		if err != nil {
			writeError(w, apperrors.Validation("invalid player_id"))
			return
		}
		ans, err := services.Answers.SubmitAnswer(r.Context(), answer.SubmitAnswerRequest{
			GameID:        gameID,
			PlayerID:      playerID,
			QuestionIndex: req.QuestionIndex,
			Answer:        req.Answer,
			IsCorrect:     req.IsCorrect,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ans)
	})

	mux.HandleFunc("GET /api/games/{id}/answers", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		answers, err := services.Answers.ListAnswers(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, answers)
	})

	registerQuizAPI(mux, services)
	registerPracticeAPI(mux, services)
	registerAdminAPI(mux, services)
	registerSnapshotAPI(mux, services)
}

func registerQuizAPI(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("GET /api/question-sets", func(w http.ResponseWriter, r *http.Request) {
		sets, err := services.Quizzes.ListQuestionSets(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sets)
	})

	mux.HandleFunc("POST /api/question-sets", func(w http.ResponseWriter, r *http.Request) {
		var req quiz.CreateQuestionSetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		set, err := services.Quizzes.CreateQuestionSet(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, set)
	})

	mux.HandleFunc("GET /api/question-sets/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		set, err := services.Quizzes.GetQuestionSet(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set)
	})

	mux.HandleFunc("PATCH /api/question-sets/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		var req quiz.UpdateQuestionSetRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		set, err := services.Quizzes.UpdateQuestionSet(r.Context(), id, req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, set)
	})

	mux.HandleFunc("DELETE /api/question-sets/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		if err := services.Quizzes.DeleteQuestionSet(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func registerPracticeAPI(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("POST /api/practice/sessions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			PlayerName string `json:"player_name"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		session, err := services.Practice.StartSession(r.Context(), req.PlayerName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, session)
	})

	mux.HandleFunc("POST /api/practice/sessions/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CorrectAnswers int `json:"correct_answers"`
			TotalAnswered  int `json:"total_answered"`
			BestStreak     int `json:"best_streak"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		session, err := services.Practice.CompleteSession(r.Context(), r.PathValue("id"),
			req.CorrectAnswers, req.TotalAnswered, req.BestStreak)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	})

	mux.HandleFunc("POST /api/practice/signups", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name    string `json:"name"`
			Contact string `json:"contact"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		signup, err := services.Practice.AddSignup(r.Context(), req.Name, req.Contact)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, signup)
	})
}

func registerAdminAPI(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("POST /api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		token, err := services.Admin.Authenticate(r.Context(), req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	})

	mux.HandleFunc("POST /api/admin/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := services.Admin.Logout(r.Context(), adminToken(r)); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/admin/export/sessions.csv", requireAdmin(services, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="practice_sessions.csv"`)
		if err := services.Exporter.ExportSessions(r.Context(), w); err != nil {
			log.Printf("Failed to export sessions: %v", err)
		}
	}))

	mux.HandleFunc("GET /api/admin/export/signups.csv", requireAdmin(services, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="practice_signups.csv"`)
		if err := services.Exporter.ExportSignups(r.Context(), w); err != nil {
			log.Printf("Failed to export signups: %v", err)
		}
	}))
}

func registerSnapshotAPI(mux *http.ServeMux, services *Services) {
	mux.HandleFunc("PUT /api/snapshots/{clientID}", func(w http.ResponseWriter, r *http.Request) {
		var snap reconnect.Snapshot
		if !decodeJSON(w, r, &snap) {
			return
		}
		if err := services.Snapshots.Save(r.Context(), r.PathValue("clientID"), snap); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/snapshots/{clientID}", func(w http.ResponseWriter, r *http.Request) {
		snap, err := services.Snapshots.Restore(r.Context(), r.PathValue("clientID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if snap == nil {
			writeError(w, apperrors.NotFound("no snapshot for client"))
			return
		}
		writeJSON(w, http.StatusOK, snap)
	})

	mux.HandleFunc("DELETE /api/snapshots/{clientID}", func(w http.ResponseWriter, r *http.Request) {
		if err := services.Snapshots.Clear(r.Context(), r.PathValue("clientID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func gameTransition(services *Services, fn func(*http.Request, uuid.UUID) (*models.Game, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathUUID(w, r, "id")
		if !ok {
			return
		}
		g, err := fn(r, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func requireAdmin(services *Services, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		valid, err := services.Admin.Valid(r.Context(), adminToken(r))
		if err != nil {
			writeError(w, err)
			return
		}
		if !valid {
			http.Error(w, "admin session required", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func adminToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func pathUUID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(key))
	if err != nil {
		writeError(w, apperrors.Validation("invalid %s", key))
		return uuid.Nil, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to write response: %v", err)
	}
}

// writeError maps error kinds onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
	case apperrors.KindValidation:
		status = http.StatusBadRequest
	case apperrors.KindTerminal:
		status = http.StatusConflict
	case apperrors.KindTransient:
		status = http.StatusServiceUnavailable
	case apperrors.KindConfig:
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  apperrors.KindOf(err).String(),
	})
}
