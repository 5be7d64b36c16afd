package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Messages MessagesConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Secrets  SecretsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type SessionConfig struct {
	Duration         time.Duration // contact session lifetime
	RefreshThreshold time.Duration // sliding-window refresh kicks in below this
}

type MessagesConfig struct {
	MaxPagesPerCall int // lookahead bound for the visible pager
}

type SMTPConfig struct {
	Host        string
	Port        int
	Email       string
	Password    string
	SenderName  string
	AlertsInbox string
}

type APIKeys struct {
	GoogleGemini string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", "gemini"
	LLMModel          string // e.g. "llama3", "gemini-2.0-flash"
	MaxToolSteps      int
}

type SecretsConfig struct {
	MasterKey string // 32-byte hex/base64 key for the plugin credential vault
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3001"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "./uploads"),
			IngestTopic:        getEnv("KNOWLEDGE_INGEST_TOPIC", "KNOWLEDGE_INGEST"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Session: SessionConfig{
			Duration:         getEnvAsDuration("SESSION_DURATION", 24*time.Hour),
			RefreshThreshold: getEnvAsDuration("SESSION_REFRESH_THRESHOLD", 4*time.Hour),
		},
		Messages: MessagesConfig{
			MaxPagesPerCall: getEnvAsInt("MESSAGES_MAX_PAGES_PER_CALL", 8),
		},
		SMTP: SMTPConfig{
			Host:        getEnv("SMTP_HOST", ""),
			Port:        getEnvAsInt("SMTP_PORT", 587),
			Email:       getEnv("SMTP_EMAIL", ""),
			Password:    getEnv("SMTP_PASSWORD", ""),
			SenderName:  getEnv("SMTP_SENDER_NAME", "SupportDesk"),
			AlertsInbox: getEnv("ESCALATION_ALERTS_INBOX", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", "gemini-2.0-flash"),
			MaxToolSteps:      getEnvAsInt("LLM_MAX_TOOL_STEPS", 5),
		},
		Secrets: SecretsConfig{
			MasterKey: getEnv("SECRETS_MASTER_KEY", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
