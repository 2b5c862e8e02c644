package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	AutoMigrate  bool          `env:"AUTO_MIGRATE"`
	CORSOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	DeckSeed     int64         `env:"DECK_SEED"`
	Debug        bool          `env:"DEBUG"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	MaxGames     int           `env:"MAX_GAMES" envDefault:"10000"`

	SelfPlayGames int `env:"SELFPLAY_GAMES" envDefault:"1000"`
}

func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	return parseConfig()
}

func parseConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxGames < 0 {
		return Config{}, fmt.Errorf("MAX_GAMES must not be negative, got %d", cfg.MaxGames)
	}
	if cfg.SelfPlayGames <= 0 {
		return Config{}, fmt.Errorf("SELFPLAY_GAMES must be positive, got %d", cfg.SelfPlayGames)
	}
	return cfg, nil
}
