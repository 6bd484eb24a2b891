package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	LogDir     string
	// host patterns of browser origins allowed on /ws; same-origin always is
	WSOriginPatterns []string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	JWTSecret  string
	SessionTTL time.Duration

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOPublicURL string
	MinIOSecure    bool

	EdenAIKey        string
	EdenAIBaseURL    string
	PrimaryProvider  string
	FallbackProvider string
	TextProviders    []string
	Temperature      float64
	MaxTokens        int
	EdenAITimeout    time.Duration

	ScreenTransition time.Duration
	AskRatePerMinute int
	TopicsFile       string
}

// LoadConfig reads .env (when present) and then the process environment.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),
		LogDir:     getEnv("LOG_DIR", "./logs"),

		WSOriginPatterns: getList("WS_ORIGIN_PATTERNS", nil),

		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "curio"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getDuration("SESSION_TTL", 24*time.Hour),

		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:    getEnv("MINIO_BUCKET", "avatars"),
		MinIOPublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		MinIOSecure:    getBool("MINIO_SECURE", false),

		EdenAIKey:        getEnv("EDEN_AI_API_KEY", ""),
		EdenAIBaseURL:    strings.TrimRight(getEnv("EDEN_AI_BASE_URL", "https://api.edenai.run/v2"), "/"),
		PrimaryProvider:  getEnv("EDEN_AI_PRIMARY_PROVIDER", "openai"),
		FallbackProvider: getEnv("EDEN_AI_FALLBACK_PROVIDER", "google"),
		TextProviders:    getList("EDEN_AI_TEXT_PROVIDERS", []string{"openai", "google", "microsoft"}),
		Temperature:      getFloat("EDEN_AI_TEMPERATURE", 0.7),
		MaxTokens:        getInt("EDEN_AI_MAX_TOKENS", 500),
		EdenAITimeout:    getDuration("EDEN_AI_TIMEOUT", 30*time.Second),

		ScreenTransition: time.Duration(getInt("SCREEN_TRANSITION_MS", 300)) * time.Millisecond,
		AskRatePerMinute: getInt("ASK_RATE_PER_MIN", 20),
		TopicsFile:       getEnv("TOPICS_FILE", ""),
	}
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return v
	}
	return fallback
}

func getList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
