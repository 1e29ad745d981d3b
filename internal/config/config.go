package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	JWTSecret   string

	// Knowledge base / retrieval
	DocumentsDir    string
	VectorIndexPath string
	ChunkSize       int
	ChunkOverlap    int
	RetrievalK      int
	MinScore        float64

	// Embeddings configuration
	EmbeddingsProvider    string // "google" (default), "openai"
	GeminiAPIKey          string
	GoogleEmbeddingsModel string // e.g., "text-embedding-004"
	OpenAIAPIKey          string
	OpenAIEmbeddingsModel string
	EmbedBatchSize        int

	// Assistant LLM
	AssistantModel string

	// Catalog / orders database
	CatalogDBPath string

	// Invoices and reports
	InvoicesDir string
	ReportsDir  string

	// Company info documents
	CompanyInfoPath   string
	DeliveryRulesPath string

	// External market data (exchange rates, holiday calendars)
	ExchangeRateAPIURL string
	HolidayAPIURL      string

	// Rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Redis (rate limiting + task queue)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Scheduled maintenance
	ReindexCron string

	// Telemetry
	OTLPEndpoint   string
	TracingEnabled bool
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		DocumentsDir:    getEnv("DOCUMENTS_DIR", "./data/documents"),
		VectorIndexPath: getEnv("VECTOR_INDEX_PATH", "./data/vector_dbs/company_index.gob"),
		ChunkSize:       getEnvInt("CHUNK_SIZE", 700),
		ChunkOverlap:    getEnvInt("CHUNK_OVERLAP", 300),
		RetrievalK:      getEnvInt("RETRIEVAL_K", 5),
		MinScore:        getEnvFloat64("MIN_SCORE", 0.2),

		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "google"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingsModel: getEnv("OPENAI_EMBEDDINGS_MODEL", "text-embedding-3-small"),
		EmbedBatchSize:        getEnvInt("EMBED_BATCH_SIZE", 32),

		AssistantModel: getEnv("ASSISTANT_MODEL", "gemini-2.0-flash"),

		CatalogDBPath: getEnv("CATALOG_DB_PATH", "./data/catalog.db"),

		InvoicesDir: getEnv("INVOICES_DIR", "./data/invoices"),
		ReportsDir:  getEnv("REPORTS_DIR", "./data/reports"),

		CompanyInfoPath:   getEnv("COMPANY_INFO_PATH", "./data/company_info.yaml"),
		DeliveryRulesPath: getEnv("DELIVERY_RULES_PATH", "./data/delivery_rules.yaml"),

		ExchangeRateAPIURL: getEnv("EXCHANGE_RATE_API_URL", "https://api.exchangerate-api.com/v4/latest"),
		HolidayAPIURL:      getEnv("HOLIDAY_API_URL", "https://date.nager.at/api/v3/publicholidays"),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ReindexCron: getEnv("REINDEX_CRON", "0 3 * * *"),

		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required - set it in .env file")
	}

	if cfg.EmbeddingsProvider == "google" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be smaller than CHUNK_SIZE (%d)", cfg.ChunkOverlap, cfg.ChunkSize)
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

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
