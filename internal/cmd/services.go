package main

import (
	"database/sql"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/easternstar/quiz/internal/admin"
	"github.com/easternstar/quiz/internal/answer"
	"github.com/easternstar/quiz/internal/events"
	"github.com/easternstar/quiz/internal/game"
	"github.com/easternstar/quiz/internal/gateway"
	"github.com/easternstar/quiz/internal/player"
	"github.com/easternstar/quiz/internal/practice"
	"github.com/easternstar/quiz/internal/quiz"
	"github.com/easternstar/quiz/internal/reconnect"
)

type Services struct {
	Games    *game.App
	Players  *player.App
	Answers  *answer.App
	Quizzes  *quiz.App
	Practice *practice.Store
	Admin    *admin.Auth
	Exporter *admin.Exporter

	Snapshots reconnect.Store

	ConnectionManager *gateway.ConnectionManager
	WebSocketHandler  *gateway.WebSocketHandler
}

func setupServices(database *sql.DB, config *Config, nc *nats.Conn, redisClient *redis.Client) (*Services, error) {
	// Wire up dependency injection chain
	// Store layer → Repository layer → App layer → gateway

	clock := clockwork.NewRealClock()

	var publisher events.Publisher
	if nc != nil {
		publisher = events.NewNATSPublisher(nc)
	} else {
		log.Printf("NATS_URL not set, using in-process event log")
		publisher = events.NewMockPublisher()
	}

	var (
		gameRepo   game.GameRepository
		playerRepo player.PlayerRepository
		answerRepo answer.AnswerRepository
		quizRepo   quiz.QuestionSetRepository
	)
	if database != nil {
		gameRepo = game.NewRepository(database)
		playerRepo = player.NewRepository(database)
		answerRepo = answer.NewRepository(database)
		quizRepo = quiz.NewRepository(database)
	} else {
		gameRepo = game.NewMemoryRepository()
		playerRepo = player.NewMemoryRepository()
		answerRepo = answer.NewMemoryRepository()
		quizRepo = quiz.NewMemoryRepository()
	}

	// Games and players reference each other through their repositories:
	// joining resolves the game by code, ending a game activates queued
	// players
	gameApp := game.NewApp(gameRepo, playerRepo, publisher)
	playerApp := player.NewApp(playerRepo, gameRepo, publisher)
	answerApp := answer.NewApp(answerRepo, playerApp, publisher, config.Game.ScoreAward)
	quizApp := quiz.NewApp(quizRepo)

	practiceStore, err := practice.NewStore(config.Practice.StorePath, clock)
	if err != nil {
		return nil, err
	}

	var sessionStore admin.SessionStore
	var snapshotStore reconnect.Store
	if redisClient != nil {
		sessionStore = admin.NewRedisSessionStore(redisClient, clock)
		snapshotStore = reconnect.NewRedisStore(redisClient, 0)
	} else {
		log.Printf("REDIS_ADDR not set, using in-memory session and snapshot stores")
		sessionStore = admin.NewMemorySessionStore()
		snapshotStore = reconnect.NewMemoryStore()
	}
	adminAuth := admin.NewAuth(getEnv("ADMIN_PASSWORD", ""), sessionStore, clock)

	connectionManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	wsHandler := gateway.NewWebSocketHandler(connectionManager)

	return &Services{
		Games:             gameApp,
		Players:           playerApp,
		Answers:           answerApp,
		Quizzes:           quizApp,
		Practice:          practiceStore,
		Admin:             adminAuth,
		Exporter:          admin.NewExporter(practiceStore),
		Snapshots:         snapshotStore,
		ConnectionManager: connectionManager,
		WebSocketHandler:  wsHandler,
	}, nil
}

func setupNATS(config *Config) (*nats.Conn, error) {
	if config.NATS.URL == "" {
		return nil, nil
	}
	nc, err := nats.Connect(config.NATS.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS: %s", config.NATS.URL)
	return nc, nil
}

func setupRedis(config *Config) *redis.Client {
	if config.Redis.Addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	log.Printf("Using Redis at %s", config.Redis.Addr)
	return client
}
