package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/easternstar/quiz/clients"
	"github.com/easternstar/quiz/internal/models"
	"github.com/easternstar/quiz/internal/phase"
	"github.com/easternstar/quiz/internal/reconnect"
	"github.com/easternstar/quiz/internal/subscription"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "quiz server base URL")
	natsURL := flag.String("nats", nats.DefaultURL, "NATS server URL")
	code := flag.String("code", "", "game join code")
	name := flag.String("name", "", "player name")
	team := flag.String("team", "adah", "team id (adah, ruth, esther, martha, electa)")
	flag.Parse()

	if *code == "" || *name == "" {
		log.Fatal("Usage: -code <game code> -name <player name> [-team <team>]")
	}

	ctx := context.Background()
	client := clients.New(*serverURL)

	result, err := client.JoinGame(ctx, strings.ToUpper(*code), *name, models.Team(*team))
	if err != nil {
		log.Fatalf("Failed to join game: %v", err)
	}
	if result.Queued {
		log.Printf("Game in progress, you are queued for the next round")
	}

	game, err := client.GetGame(ctx, result.Player.GameID)
	if err != nil {
		log.Fatalf("Failed to load game: %v", err)
	}
	if game.QuestionSetID == nil {
		log.Fatalf("Game %s has no question set", game.GameCode)
	}
	set, err := client.GetQuestionSet(ctx, *game.QuestionSetID)
	if err != nil {
		log.Fatalf("Failed to load questions: %v", err)
	}

	nc, err := nats.Connect(*natsURL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer nc.Close()

	session, err := clients.NewPlayerSession(clients.SessionConfig{
		Client:      client,
		Game:        game,
		Player:      result.Player,
		Questions:   set.Questions,
		OpenChannel: subscription.NATSChannelFactory(nc),
		Snapshots:   reconnect.NewMemoryStore(),
		OnConnectionLost: func() {
			fmt.Println("* connection lost, reconnecting...")
		},
		OnReconnected: func() {
			fmt.Println("* reconnected")
		},
		OnWelcomeBack: func(hiddenFor time.Duration) {
			fmt.Printf("* welcome back! you were away for %s\n", hiddenFor.Round(time.Second))
		},
		OnError: func(err error) {
			fmt.Printf("* %v\n", err)
		},
	})
	if err != nil {
		log.Fatalf("Failed to build session: %v", err)
	}

	if err := session.Start(ctx); err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer session.Stop()

	log.Printf("Joined game %s as %s (team %s)", game.GameCode, result.Player.Name, result.Player.Team)
	printQuestion(session, set.Questions)
	repl(ctx, session, set.Questions)
}

func repl(ctx context.Context, session *clients.PlayerSession, questions []models.Question) {
	fmt.Println("Commands: a|b|c|d (select), submit, advance, scores, status, hide, show, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		m := session.Machine()
		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		switch cmd {
		case "a", "b", "c", "d":
			if err := m.Select(strings.ToUpper(cmd)); err != nil {
				fmt.Printf("* %v\n", err)
			}
		case "submit":
			m.Submit(ctx)
			printReveal(m, questions)
		case "advance":
			if err := m.Advance(); err != nil {
				fmt.Printf("* %v\n", err)
				break
			}
			printQuestion(session, questions)
		case "scores":
			for team, score := range m.Scores() {
				fmt.Printf("  %-8s %d\n", team, score)
			}
		case "status":
			fmt.Printf("  question %d, phase %s, %ds remaining\n", m.Index()+1, m.Phase(), m.Timer().Remaining())
		case "hide":
			session.Hidden(ctx)
		case "show":
			session.Visible(ctx)
		case "quit":
			return
		case "":
		default:
			fmt.Printf("* unknown command %q\n", cmd)
		}
	}
}

func printQuestion(session *clients.PlayerSession, questions []models.Question) {
	m := session.Machine()
	if m.Phase() != phase.PhaseQuestion {
		fmt.Printf("-- %s --\n", m.Phase())
		return
	}
	q := questions[m.Index()]
	fmt.Printf("\nQ%d: %s\n", m.Index()+1, q.Text)
	for _, opt := range q.Options {
		fmt.Printf("  %s) %s\n", opt.Label, opt.Text)
	}
}

func printReveal(m *phase.Machine, questions []models.Question) {
	q := questions[m.Index()]
	if m.Selected() == q.CorrectLabel {
		fmt.Println("Correct!")
	} else {
		fmt.Printf("The answer was %s. %s\n", q.CorrectLabel, q.Explanation)
	}
}
