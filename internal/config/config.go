package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
	Ingest   IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	ReembedTopic string // Watermill topic for the re-embedding pipeline
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	MaxRetries        int
	RetrieveTopK      int
	RetrieveTopN      int
	GradeParallelism  int
	RerankWorkers     int
}

type IngestConfig struct {
	UploadDir     string
	ChunkSize     int
	ChunkOverlap  int
	MaxFileSizeMB int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			ReembedTopic: getEnv("REEMBED_DOCUMENT_TOPIC_NAME", "REEMBED_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			MaxRetries:        getEnvAsInt("WORKFLOW_MAX_RETRIES", 2),
			RetrieveTopK:      getEnvAsInt("RETRIEVE_TOP_K", 15),
			RetrieveTopN:      getEnvAsInt("RETRIEVE_TOP_N", 3),
			GradeParallelism:  getEnvAsInt("GRADE_PARALLELISM", 4),
			RerankWorkers:     getEnvAsInt("RERANK_WORKERS", 4),
		},
		Ingest: IngestConfig{
			UploadDir:     getEnv("INGEST_UPLOAD_DIR", os.TempDir()),
			ChunkSize:     getEnvAsInt("INGEST_CHUNK_SIZE", 1000),
			ChunkOverlap:  getEnvAsInt("INGEST_CHUNK_OVERLAP", 150),
			MaxFileSizeMB: getEnvAsInt("INGEST_MAX_FILE_SIZE_MB", 25),
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
