package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	// StoreBackend selects the durable attempt store: "file" or "redis".
	StoreBackend string
	StorePath    string
	RedisURL     string

	// BankPath points at the static question bank JSON file.
	BankPath string

	ExamQuestionCount int
	ExamDurationSec   int
	AttemptRetention  int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "pretty"),
		StoreBackend:      getEnv("STORE_BACKEND", "file"),
		StorePath:         getEnv("STORE_PATH", "./examsim.json"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		BankPath:          getEnv("BANK_PATH", "./questions.json"),
		ExamQuestionCount: getEnvInt("EXAM_QUESTION_COUNT", 100),
		ExamDurationSec:   getEnvInt("EXAM_DURATION_SEC", 5400),
		AttemptRetention:  getEnvInt("ATTEMPT_RETENTION", 50),
		AllowedOrigins:    parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
