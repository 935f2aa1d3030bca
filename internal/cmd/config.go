package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML server configuration. Every field has a sensible
// default so the server runs with no config file at all.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	NATS struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Game struct {
		QuestionDurationSec int `yaml:"question_duration_sec"`
		ScoreAward          int `yaml:"score_award"`
	} `yaml:"game"`

	Practice struct {
		StorePath string `yaml:"store_path"`
	} `yaml:"practice"`
}

func defaultConfig() *Config {
	var config Config
	config.Server.Port = getEnv("PORT", "8080")
	config.NATS.URL = getEnv("NATS_URL", "")
	config.Redis.Addr = getEnv("REDIS_ADDR", "")
	config.Game.QuestionDurationSec = getEnvAsInt("QUESTION_DURATION_SEC", 30)
	config.Game.ScoreAward = getEnvAsInt("SCORE_AWARD", 100)
	config.Practice.StorePath = getEnv("PRACTICE_STORE_PATH", "data/practice.json")
	return &config
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Game.QuestionDurationSec <= 0 {
		config.Game.QuestionDurationSec = 30
	}
	if config.Game.ScoreAward <= 0 {
		config.Game.ScoreAward = 100
	}
	return config, nil
}

// QuestionDuration returns the per-question countdown as a duration
func (c *Config) QuestionDuration() time.Duration {
	return time.Duration(c.Game.QuestionDurationSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
