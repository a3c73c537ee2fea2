package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	UserLookupURL string
	StatsURL      string
	AvatarURL     string
	GameID        string

	BackendURL    string
	BackendAPIKey string

	DBPath      string
	ServerPort  string
	BackendPort string
	LogLevel    string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		UserLookupURL: getEnv("USER_LOOKUP_API_URL", ""),
		StatsURL:      getEnv("STATS_API_URL", ""),
		AvatarURL:     getEnv("AVATAR_API_URL", ""),
		GameID:        getEnv("GAME_ID", "vc"),
		BackendURL:    getEnv("BACKEND_API_URL", "http://localhost:8081"),
		BackendAPIKey: getEnv("BACKEND_API_KEY", ""),
		DBPath:        getEnv("DB_PATH", "vega.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		BackendPort:   getEnv("BACKEND_PORT", "8081"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.UserLookupURL == "" {
		return nil, fmt.Errorf("USER_LOOKUP_API_URL is required")
	}
	if cfg.StatsURL == "" {
		return nil, fmt.Errorf("STATS_API_URL is required")
	}
	if cfg.AvatarURL == "" {
		return nil, fmt.Errorf("AVATAR_API_URL is required")
	}
	if cfg.BackendAPIKey == "" {
		return nil, fmt.Errorf("BACKEND_API_KEY is required")
	}

	logger.Info().
		Str("game_id", cfg.GameID).
		Str("backend_url", cfg.BackendURL).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("backend_port", cfg.BackendPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
