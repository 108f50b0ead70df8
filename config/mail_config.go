package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Generation backend
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	ClassifierModel  string
	InvoiceModel     string
	RequestModel     string
	LLMTemperature   float64
	LLMMaxTokens     int
	InvoiceMaxTokens int
	LLMTimeout       time.Duration

	// Prompt limits
	ClassifyMaxChars int
	ExtractMaxChars  int

	// Classification
	TicketPrefix    string
	UrgencyKeywords []string

	// Worker
	EnrichmentWorkers int
	WorkerQueueSize   int

	// Store selection: dataverse, postgres or memory
	StoreDriver string

	// Dataverse
	DataverseResource     string
	DataverseTable        string
	DataversePrimaryID    string
	DataverseTenantID     string
	DataverseClientID     string
	DataverseClientSecret string

	// Postgres
	DatabaseURL string

	// Redis dedup (optional)
	RedisURL string

	// Dev message source
	SourceFile string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		ClassifierModel:  getEnv("CLASSIFIER_MODEL", "gpt-4o-mini"),
		InvoiceModel:     getEnv("INVOICE_MODEL", "gpt-4o-mini"),
		RequestModel:     getEnv("REQUEST_MODEL", "gpt-4o-mini"),
		LLMTemperature:   getEnvFloat("LLM_TEMPERATURE", 0),
		LLMMaxTokens:     getEnvInt("LLM_MAX_TOKENS", 200),
		InvoiceMaxTokens: getEnvInt("INVOICE_MAX_TOKENS", 400),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 120)) * time.Second,

		ClassifyMaxChars: getEnvInt("CLASSIFY_MAX_CHARS", 4000),
		ExtractMaxChars:  getEnvInt("EXTRACT_MAX_CHARS", 12000),

		TicketPrefix:    getEnv("TICKET_PREFIX", "REQ-"),
		UrgencyKeywords: getEnvSlice("URGENCY_KEYWORDS", nil),

		EnrichmentWorkers: getEnvInt("ENRICHMENT_WORKERS", 4),
		WorkerQueueSize:   getEnvInt("WORKER_QUEUE_SIZE", 256),

		StoreDriver: getEnv("STORE_DRIVER", "dataverse"),

		DataverseResource:     getEnv("DATAVERSE_RESOURCE", ""),
		DataverseTable:        getEnv("DATAVERSE_TABLE", ""),
		DataversePrimaryID:    getEnv("DATAVERSE_PRIMARY_ID", "crabb_arth_main1id"),
		DataverseTenantID:     getEnv("DATAVERSE_TENANT_ID", ""),
		DataverseClientID:     getEnv("DATAVERSE_CLIENT_ID", ""),
		DataverseClientSecret: getEnv("DATAVERSE_CLIENT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		SourceFile: getEnv("SOURCE_FILE", ""),
	}, nil
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

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
