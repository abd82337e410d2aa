package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	DatabaseURL string

	GeminiAPIKey     string
	GeminiModelID    string
	GeminiTTSModelID string
	ModelTimeout     time.Duration
	InstructionCacheTTL time.Duration

	HistoryLimit  int
	ClientLimit   int

	RedisAddr     string
	RedisPassword string
	AudioCacheTTL time.Duration

	CORSOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:       getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		GeminiTTSModelID:    getEnv("GEMINI_TTS_MODEL_ID", "gemini-2.5-flash-preview-tts"),
		ModelTimeout:        getEnvAsDuration("MODEL_TIMEOUT", 30*time.Second),
		InstructionCacheTTL: getEnvAsDuration("INSTRUCTION_CACHE_TTL", time.Hour),

		HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 15),
		ClientLimit:  getEnvAsInt("CONTEXT_CLIENT_LIMIT", 50),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		AudioCacheTTL: getEnvAsDuration("AUDIO_CACHE_TTL", 24*time.Hour),

		CORSOrigins: splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
