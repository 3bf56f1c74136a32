package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Supabase
	SupabaseURL           string
	SupabaseKey           string
	SupabaseJWTSecret     string
	SupabaseStorageBucket string
	AdminAccess           bool

	// Database (direct connection, migrations only)
	DatabaseURL string

	// Gemini image model
	GeminiAPIKey string
	GeminiModel  string

	// fal.ai icon renderer
	FalAPIKey  string
	FalBaseURL string
	FalModel   string

	// OpenAI topic summarizer
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Deferred tasks
	RedisURL      string
	TaskWorkers   int
	TaskQueueSize int

	// Server
	Port                 string
	Environment          string
	CORSAllowedOrigins   []string
	TrustedProxies       []string
	GenerationRatePerMin int
	ShutdownTimeout      time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		SupabaseURL:           strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseKey:           getEnv("SUPABASE_KEY", ""),
		SupabaseJWTSecret:     getEnv("SUPABASE_JWT_SECRET", ""),
		SupabaseStorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "whisprdraw"),
		AdminAccess:           getEnvAsBool("ADMIN_ACCESS", false),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash-image-preview"),

		FalAPIKey:  getEnv("FAL_API_KEY", ""),
		FalBaseURL: getEnv("FAL_BASE_URL", "https://queue.fal.run"),
		FalModel:   getEnv("FAL_MODEL", "fal-ai/flux/schnell"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		RedisURL:      getEnv("REDIS_URL", ""),
		TaskWorkers:   getEnvAsInt("TASK_WORKERS", 4),
		TaskQueueSize: getEnvAsInt("TASK_QUEUE_SIZE", 256),

		Port:                 getEnv("PORT", "8080"),
		Environment:          getEnv("ENVIRONMENT", "development"),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		TrustedProxies:       getEnvAsList("TRUSTED_PROXIES", nil),
		GenerationRatePerMin: getEnvAsInt("GENERATION_RATE_PER_MIN", 30),
		ShutdownTimeout:      time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseKey == "" {
		return fmt.Errorf("SUPABASE_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.TaskWorkers < 1 {
		return fmt.Errorf("TASK_WORKERS must be at least 1")
	}
	if c.TaskQueueSize < 1 {
		return fmt.Errorf("TASK_QUEUE_SIZE must be at least 1")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var values []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
