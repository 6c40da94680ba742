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

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Gemini   GeminiConfig
	Qdrant   QdrantConfig
	Upload   UploadConfig
	CORS     CORSConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type StoreConfig struct {
	Driver  string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// GeminiConfig selects the Gemini API when APIKey is set and Vertex AI
// (Project + Location) otherwise.
type GeminiConfig struct {
	APIKey     string
	Project    string
	Location   string
	Model      string
	EmbedModel string
	Timeout    time.Duration
	MaxRetries int
}

// RequestBudget is the longest a single API request can spend on Gemini: two
// prompts (the reply and one stricter re-prompt), each retried MaxRetries
// times with linear backoff, plus one embedding call and headroom for the
// store round trips.
func (g GeminiConfig) RequestBudget() time.Duration {
	retries := g.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var backoff time.Duration
	for attempt := 1; attempt < retries; attempt++ {
		backoff += time.Duration(attempt) * 500 * time.Millisecond
	}

	perPrompt := time.Duration(retries)*g.Timeout + backoff
	return 2*perPrompt + g.Timeout + 30*time.Second
}

// QdrantConfig with an empty URL disables experience retrieval.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

func (q QdrantConfig) Enabled() bool {
	return q.URL != ""
}

type UploadConfig struct {
	MaxFileSize    int64
	MaxResumeChars int
}

type CORSConfig struct {
	AllowOrigins []string
}

type WorkerConfig struct {
	Concurrency      int
	RecoveryInterval time.Duration
	RecoveryGrace    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return FromEnv()
}

// FromEnv builds the configuration from the current process environment
// without touching .env.
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8000"),
			Env:  getEnv("ENV", "development"),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			Timeout: getEnvAsDuration("STORE_TIMEOUT", "5s"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "careerpilot"),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Project:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
			Location:   getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			Timeout:    getEnvAsDuration("GEMINI_TIMEOUT", "60s"),
			MaxRetries: getEnvAsInt("GEMINI_MAX_RETRIES", 3),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "careerpilot_experience"),
		},
		Upload: UploadConfig{
			MaxFileSize:    getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxResumeChars: getEnvAsInt("MAX_RESUME_CHARS", 20000),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsList("FRONTEND_ORIGINS", "http://localhost:3000"),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvAsInt("WORKER_CONCURRENCY", 3),
			RecoveryInterval: getEnvAsDuration("RECOVERY_INTERVAL", "30s"),
			RecoveryGrace:    getEnvAsDuration("RECOVERY_GRACE", "2m"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key, defaultValue string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, defaultValue), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
