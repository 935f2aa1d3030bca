package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/easternstar/quiz/internal/gateway"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := setupDatabase()
	if err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	if database != nil {
		defer database.Close()
	}

	nc, err := setupNATS(config)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	if nc != nil {
		defer nc.Close()
	}

	redisClient := setupRedis(config)
	if redisClient != nil {
		defer redisClient.Close()
	}

	services, err := setupServices(database, config, nc, redisClient)
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go services.ConnectionManager.Start(ctx)

	if nc != nil {
		consumerConfig := gateway.DefaultConsumerConfig()
		consumerConfig.URL = config.NATS.URL
		consumer, err := gateway.NewEventConsumer(services.ConnectionManager, consumerConfig)
		if err != nil {
			log.Fatalf("Failed to setup event consumer: %v", err)
		}
		defer consumer.Stop()
		go func() {
			if err := consumer.Start(ctx); err != nil {
				log.Printf("Event consumer stopped: %v", err)
			}
		}()
	}

	server := setupServer(config, services)
	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
