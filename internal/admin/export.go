package admin

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/easternstar/quiz/internal/models"
)

// PracticeReader supplies the practice records the exports read from
type PracticeReader interface {
	Sessions(ctx context.Context) ([]models.PracticeSession, error)
	Signups(ctx context.Context) ([]models.PracticeSignup, error)
}

var sessionHeaders = []string{
	"id", "player_name", "correct_answers", "total_answered", "best_streak",
	"started_at", "completed_at",
}

var signupHeaders = []string{"id", "name", "contact", "created_at"}

// Exporter writes practice records as CSV for the admin download endpoints
type Exporter struct {
	reader PracticeReader
}

func NewExporter(reader PracticeReader) *Exporter {
	return &Exporter{reader: reader}
}

// ExportSessions writes all practice sessions as CSV
func (e *Exporter) ExportSessions(ctx context.Context, w io.Writer) error {
	sessions, err := e.reader.Sessions(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(sessionHeaders); err != nil {
		return err
	}
	for _, s := range sessions {
		completedAt := ""
		if s.CompletedAt != nil {
			completedAt = s.CompletedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			s.ID,
			s.PlayerName,
			strconv.Itoa(s.CorrectAnswers),
			strconv.Itoa(s.TotalAnswered),
			strconv.Itoa(s.BestStreak),
			s.StartedAt.UTC().Format(time.RFC3339),
			completedAt,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportSignups writes all practice signups as CSV
func (e *Exporter) ExportSignups(ctx context.Context, w io.Writer) error {
	signups, err := e.reader.Signups(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(signupHeaders); err != nil {
		return err
	}
	for _, s := range signups {
		record := []string{
			s.ID,
			s.Name,
			s.Contact,
			s.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
