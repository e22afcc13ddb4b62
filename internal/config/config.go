// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Port     string
	LogLevel string
	APIKey   string

	// Postgres (vector index + job queue) and MongoDB (user/project documents)
	DatabaseURL string
	MongoURI    string
	MongoDB     string

	// Redis pub/sub for best-effort user notifications; empty disables it
	RedisAddr string

	// Gemini provider
	GeminiAPIKey    string
	EmbeddingModel  string
	GenerativeModel string

	// Bounded timeouts for third-party calls; nothing in the pipeline may block
	// indefinitely on a provider
	EmbedTimeout time.Duration
	GenAITimeout time.Duration

	// Generative calls per minute across the process
	GenAIRequestsPerMinute int

	// Retrieval depth for the vector search stage
	MatchTopK int

	// Vector job queue concurrency cap and per-job attempts
	VectorMaxConcurrent int
	VectorMaxAttempts   int

	MetricsEnabled bool
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads a .env file if one exists. Missing provider credentials are
// the one class of unrecoverable startup error, so GEMINI_API_KEY, DATABASE_URL,
// MONGO_URI and API_KEY are required; everything else has a default.
func Load() (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" {
		return nil, errors.New("API_KEY environment variable is required but not set")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required but not set")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		return nil, errors.New("MONGO_URI environment variable is required but not set")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required but not set")
	}

	matchTopK := getEnvAsInt("MATCH_TOP_K", 10)
	if matchTopK <= 0 {
		return nil, errors.New("MATCH_TOP_K must be a positive integer")
	}

	vectorMaxConcurrent := getEnvAsInt("VECTOR_MAX_CONCURRENT", 4)
	if vectorMaxConcurrent <= 0 {
		return nil, errors.New("VECTOR_MAX_CONCURRENT must be a positive integer")
	}

	vectorMaxAttempts := getEnvAsInt("VECTOR_MAX_ATTEMPTS", 3)
	if vectorMaxAttempts <= 0 {
		return nil, errors.New("VECTOR_MAX_ATTEMPTS must be a positive integer")
	}

	genaiPerMinute := getEnvAsInt("GENAI_REQUESTS_PER_MINUTE", 60)
	if genaiPerMinute <= 0 {
		return nil, errors.New("GENAI_REQUESTS_PER_MINUTE must be a positive integer")
	}

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		APIKey:   apiKey,

		DatabaseURL: databaseURL,
		MongoURI:    mongoURI,
		MongoDB:     getEnv("MONGO_DB", "talentmatch"),

		RedisAddr: getEnv("REDIS_ADDR", ""),

		GeminiAPIKey:    geminiKey,
		EmbeddingModel:  getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		GenerativeModel: getEnv("GENERATIVE_MODEL", "gemini-2.5-flash"),

		EmbedTimeout: getEnvAsDuration("EMBED_TIMEOUT", 15*time.Second),
		GenAITimeout: getEnvAsDuration("GENAI_TIMEOUT", 45*time.Second),

		GenAIRequestsPerMinute: genaiPerMinute,

		MatchTopK: matchTopK,

		VectorMaxConcurrent: vectorMaxConcurrent,
		VectorMaxAttempts:   vectorMaxAttempts,

		MetricsEnabled: getEnv("METRICS_ENABLED", "") == "true",
	}

	return cfg, nil
}
