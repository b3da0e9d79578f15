package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Rag      RagConfig
	Session  SessionConfig
	Persona  Persona

	// set when PERSONA_FILE cannot be used; reported by Validate
	personaErr error
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	ChatTurnTopic      string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	OpenAI       string
}

type AIConfig struct {
	EmbeddingProvider string // "gemini", "ollama" or "openai"
	EmbeddingModel    string
	LLMProvider       string // "gemini", "ollama", "openai" or "static"
	LLMModel          string
	OllamaBaseURL     string
	OpenAIBaseURL     string
	StaticReply       string

	RequestTimeout time.Duration
	MaxRetries     int
	EmbedRPS       float64
}

type RagConfig struct {
	DataDir          string
	VectorStore      string // "memory" or "pgvector"
	ChunkSize        int
	ChunkOverlap     int
	SimilarityTopK   int
	MemoryTokenLimit int
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	cfg := &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			ChatTurnTopic:      getEnv("CHAT_TURN_TOPIC_NAME", "CHAT_TURN"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			StaticReply:       getEnv("STATIC_REPLY", ""),
			RequestTimeout:    getEnvAsDuration("LLM_REQUEST_TIMEOUT", 60*time.Second),
			MaxRetries:        getEnvAsInt("LLM_MAX_RETRIES", 3),
			EmbedRPS:          getEnvAsFloat("EMBEDDING_REQUESTS_PER_SECOND", 5),
		},
		Rag: RagConfig{
			DataDir:          getEnv("DATA_DIR", "./data"),
			VectorStore:      getEnv("VECTOR_STORE", "memory"),
			ChunkSize:        getEnvAsInt("CHUNK_SIZE", 1024),
			ChunkOverlap:     getEnvAsInt("CHUNK_OVERLAP", 200),
			SimilarityTopK:   getEnvAsInt("SIMILARITY_TOP_K", 2),
			MemoryTokenLimit: getEnvAsInt("MEMORY_TOKEN_LIMIT", 15000),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", ""),
			TTL:    getEnvAsDuration("SESSION_TTL", 2*time.Hour),
		},
		Persona: DefaultPersona(),
	}

	if path := getEnv("PERSONA_FILE", ""); path != "" {
		persona, err := LoadPersona(path, cfg.Persona)
		if err != nil {
			cfg.personaErr = fmt.Errorf("PERSONA_FILE %s: %w", path, err)
		} else {
			cfg.Persona = *persona
		}
	}

	return cfg
}

// Validate reports configuration errors. They are fatal at startup.
func (c *Config) Validate() error {
	var errs []error

	if c.personaErr != nil {
		errs = append(errs, c.personaErr)
	}

	needsGemini := c.Ai.EmbeddingProvider == "gemini" || c.Ai.LLMProvider == "gemini"
	if needsGemini && c.Keys.GoogleGemini == "" {
		errs = append(errs, errors.New("GOOGLE_API_KEY is required for the gemini provider"))
	}
	needsOpenAI := c.Ai.EmbeddingProvider == "openai" || c.Ai.LLMProvider == "openai"
	if needsOpenAI && c.Keys.OpenAI == "" && c.Ai.OpenAIBaseURL == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required for the openai provider"))
	}
	if strings.TrimSpace(c.Rag.DataDir) == "" {
		errs = append(errs, errors.New("DATA_DIR must not be empty"))
	}
	if c.Rag.VectorStore == "pgvector" && c.Database.Connection == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required when VECTOR_STORE=pgvector"))
	}
	if c.Rag.ChunkSize <= 0 || c.Rag.ChunkOverlap < 0 || c.Rag.ChunkOverlap >= c.Rag.ChunkSize {
		errs = append(errs, fmt.Errorf("invalid chunking: size=%d overlap=%d", c.Rag.ChunkSize, c.Rag.ChunkOverlap))
	}
	if c.Rag.SimilarityTopK <= 0 {
		errs = append(errs, fmt.Errorf("SIMILARITY_TOP_K must be positive, got %d", c.Rag.SimilarityTopK))
	}
	if c.Rag.MemoryTokenLimit <= 0 {
		errs = append(errs, fmt.Errorf("MEMORY_TOKEN_LIMIT must be positive, got %d", c.Rag.MemoryTokenLimit))
	}

	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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
