package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	DBMaxConns    int
	DBMinConns    int
	MigrationsDir string

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiEmbeddingModel string
	GeminiConcurrentReqs int
	LLMTimeoutSeconds    int

	// Storage
	StoragePath string
	MaxUploadMB int64

	// Embedding index
	ChunkSize    int
	ChunkOverlap int
	WorkerCount  int

	// Rate limiting
	RateLimitPerMin int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		DBMaxConns:           getEnvAsIntOrDefault("DB_MAX_CONNS", 25),
		DBMinConns:           getEnvAsIntOrDefault("DB_MIN_CONNS", 5),
		MigrationsDir:        getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiEmbeddingModel: getEnvOrDefault("GEMINI_EMBEDDING_MODEL", "text-embedding-004"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		LLMTimeoutSeconds:    getEnvAsIntOrDefault("LLM_TIMEOUT_SECONDS", 60),
		StoragePath:          getEnvOrDefault("STORAGE_PATH", "./storage"),
		MaxUploadMB:          int64(getEnvAsIntOrDefault("MAX_UPLOAD_MB", 25)),
		ChunkSize:            getEnvAsIntOrDefault("CHUNK_SIZE", 1500),
		ChunkOverlap:         getEnvAsIntOrDefault("CHUNK_OVERLAP", 150),
		WorkerCount:          getEnvAsIntOrDefault("WORKER_COUNT", 3),
		RateLimitPerMin:      getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 60),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
