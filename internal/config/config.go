package config

import (
	"fmt"
	"os"
	"strconv"
)

// HistoryLimit is the maximum number of messages delivered on join.
const HistoryLimit = 50

// Config carries everything main needs to wire the process. Values come from
// the environment (godotenv is loaded by main before Load is called).
type Config struct {
	ListenAddr  string
	PostgresDSN string
	RedisAddr   string
	RedisDB     int
}

// Load reads the configuration from the environment, falling back to the
// docker-compose defaults.
func Load() Config {
	cfg := Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		RedisAddr:  getEnv("REDIS_ADDR", "localhost:6380"),
	}

	cfg.PostgresDSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "user"),
		getEnv("DB_PASSWORD", "password"),
		getEnv("DB_NAME", "roomchatdb"),
		getEnv("DB_PORT", "5432"),
	)

	if v, err := strconv.Atoi(getEnv("REDIS_DB", "0")); err == nil {
		cfg.RedisDB = v
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
