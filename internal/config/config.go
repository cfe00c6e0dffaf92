package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// JWT Token Secrets
	AccessSecret  string
	RefreshSecret string
	BcryptCost    int

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Wizard session storage
	SessionTTLHours int

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Enhancement backend: "rules" (default) or "gemini"
	EnhancementBackend string
	GeminiAPIKey       string
	GeminiTier         string

	// Worker / dispatcher
	DispatchIntervalSec int
	WorkerConcurrency   int

	// Telemetry
	OTLPEndpoint     string
	TelemetryEnabled bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/social_campaign"),
		DBName:      getEnv("DB_NAME", "social_campaign"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		AccessSecret:  getEnv("ACCESS_SECRET", ""),
		RefreshSecret: getEnv("REFRESH_SECRET", ""),
		BcryptCost:    getEnvInt("BCRYPT_COST", 12),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionTTLHours: getEnvInt("SESSION_TTL_HOURS", 24),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		EnhancementBackend: getEnv("ENHANCEMENT_BACKEND", "rules"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiTier:         getEnv("GEMINI_TIER", "free"),

		DispatchIntervalSec: getEnvInt("DISPATCH_INTERVAL_SECONDS", 60),
		WorkerConcurrency:   getEnvInt("WORKER_CONCURRENCY", 20),

		OTLPEndpoint:     getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TelemetryEnabled: getEnvBool("TELEMETRY_ENABLED", false),
	}

	// Validate required fields
	if cfg.AccessSecret == "" {
		return nil, fmt.Errorf("ACCESS_SECRET is required - set it in .env file")
	}

	if cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("REFRESH_SECRET is required - set it in .env file")
	}

	if cfg.EnhancementBackend != "rules" && cfg.EnhancementBackend != "gemini" {
		return nil, fmt.Errorf("ENHANCEMENT_BACKEND must be \"rules\" or \"gemini\", got %q", cfg.EnhancementBackend)
	}

	if cfg.EnhancementBackend == "gemini" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when ENHANCEMENT_BACKEND=gemini")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
