package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port               int
	DatabaseURL        string
	QuestionServiceURL string
	LogLevel           string
}

// Load reads .env when present, then the environment. Every value has
// a working default; only DATABASE_URL being empty changes behavior
// (persistence is disabled).
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using environment")
	}
	return Config{
		Port:               getEnvAsInt("PORT", 8080),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		QuestionServiceURL: getEnv("QUESTION_SERVICE_URL", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}
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
