package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"

	"github.com/easternstar/quiz/internal/dbconfig"
)

// setupDatabase connects to Postgres when DB_HOST is set. A nil return with
// no error means the server should fall back to in-memory stores.
func setupDatabase() (*sql.DB, error) {
	dbConfig := dbconfig.NewConfigFromEnv()
	if !dbConfig.Configured() {
		log.Printf("DB_HOST not set, using in-memory stores")
		return nil, nil
	}

	database, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Connected to database: %s@%s:%d/%s", dbConfig.User, dbConfig.Host, dbConfig.Port, dbConfig.Database)
	return database, nil
}
