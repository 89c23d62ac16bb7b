package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jwebster45206/npc-world/pkg/actor"
	"github.com/jwebster45206/npc-world/pkg/world"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	CORSOrigins []string
	RedisURL    string

	// NPCFile optionally points at a JSON array of NPC specs that replaces
	// the default roster.
	NPCFile string

	MapWidth           int
	MapHeight          int
	WallProbability    float64
	MapSeed            uint64
	MaxMovementHistory int
	MaxMessageHistory  int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "5000"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		CORSOrigins: parseList(getEnv("CORS_ORIGINS", "*")),
		RedisURL:    os.Getenv("REDIS_URL"),
		NPCFile:     os.Getenv("NPC_FILE"),
	}

	var err error
	if cfg.MapWidth, err = getEnvInt("MAP_WIDTH", 20); err != nil {
		return nil, err
	}
	if cfg.MapHeight, err = getEnvInt("MAP_HEIGHT", 15); err != nil {
		return nil, err
	}
	if cfg.MaxMovementHistory, err = getEnvInt("MAX_MOVEMENT_HISTORY", actor.DefaultMaxMovementHistory); err != nil {
		return nil, err
	}
	if cfg.MaxMessageHistory, err = getEnvInt("MAX_MESSAGE_HISTORY", actor.DefaultMaxMessageHistory); err != nil {
		return nil, err
	}
	if cfg.WallProbability, err = getEnvFloat("WALL_PROBABILITY", 0.2); err != nil {
		return nil, err
	}
	seed := getEnv("MAP_SEED", "0")
	if cfg.MapSeed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid MAP_SEED %q: %w", seed, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that the environment parser cannot.
func (c *Config) Validate() error {
	if err := c.MapConfig().Validate(); err != nil {
		return err
	}
	if c.MaxMovementHistory <= 0 {
		return fmt.Errorf("MAX_MOVEMENT_HISTORY must be positive, got %d", c.MaxMovementHistory)
	}
	if c.MaxMessageHistory <= 0 {
		return fmt.Errorf("MAX_MESSAGE_HISTORY must be positive, got %d", c.MaxMessageHistory)
	}
	return nil
}

// MapConfig returns the map generation settings.
func (c *Config) MapConfig() world.Config {
	return world.Config{
		Width:           c.MapWidth,
		Height:          c.MapHeight,
		WallProbability: c.WallProbability,
		SpawnPoints:     world.DefaultSpawnPoints,
	}
}

// NPCOptions returns the history bounds for NPCs.
func (c *Config) NPCOptions() actor.Options {
	return actor.Options{
		MaxMovementHistory: c.MaxMovementHistory,
		MaxMessageHistory:  c.MaxMessageHistory,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
