package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Embedding EmbeddingConfig
	Settings  SettingsConfig
	Crawl     CrawlConfig
	Upload    UploadConfig
	Retrieval RetrievalConfig
	Ingest    IngestConfig
	Auth      AuthConfig
	Tracing   TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JobsTopic          string
}

type DatabaseConfig struct {
	Connection  string
	VectorStore string // "postgres" or "memory"
}

type EmbeddingConfig struct {
	Provider       string // "openai" or "ollama"
	BaseURL        string
	Model          string
	APIKey         string
	TimeoutSeconds int
}

// SettingsConfig selects the store settings source. The static fields are
// the settings document when Source is "static" and the fallback otherwise.
type SettingsConfig struct {
	Source          string // "static" or "redis"
	RedisKey        string
	CommerceEnabled bool
	ExcludedIds     string // "product:12,14;page:3"
	StoreKnowledge  string
}

type CrawlConfig struct {
	MaxPages            int
	MaxDepth            int
	RequestDelayMs      int
	FetchTimeoutSeconds int
	UserAgent           string
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type RetrievalConfig struct {
	CacheTTLSeconds int
}

type IngestConfig struct {
	BatchSize int
	// Pending or processing jobs idle this long are re-queued on boot and
	// on resubmission. Zero disables the check.
	StaleJobMinutes int
}

type AuthConfig struct {
	JWTSecret string
}

// TracingConfig is read before the rest of the application starts.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JobsTopic:          getEnv("JOBS_TOPIC", "INGESTION_JOBS"),
		},
		Database: DatabaseConfig{
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			VectorStore: getEnv("VECTOR_STORE", "postgres"),
		},
		Embedding: EmbeddingConfig{
			Provider:       getEnv("EMBEDDING_PROVIDER", "openai"),
			BaseURL:        getEnv("EMBEDDING_BASE_URL", ""),
			Model:          getEnv("EMBEDDING_MODEL", ""),
			APIKey:         getEnv("EMBEDDING_API_KEY", ""),
			TimeoutSeconds: getEnvAsInt("EMBEDDING_TIMEOUT_SECONDS", 30),
		},
		Settings: SettingsConfig{
			Source:          getEnv("SETTINGS_SOURCE", "static"),
			RedisKey:        getEnv("SETTINGS_REDIS_KEY", "shopassist:settings"),
			CommerceEnabled: getEnvAsBool("COMMERCE_ENABLED", true),
			ExcludedIds:     getEnv("EXCLUDED_CONTENT_IDS", ""),
			StoreKnowledge:  getEnv("STORE_KNOWLEDGE", ""),
		},
		Crawl: CrawlConfig{
			MaxPages:            getEnvAsInt("CRAWL_MAX_PAGES", 50),
			MaxDepth:            getEnvAsInt("CRAWL_MAX_DEPTH", 3),
			RequestDelayMs:      getEnvAsInt("CRAWL_REQUEST_DELAY_MS", 1000),
			FetchTimeoutSeconds: getEnvAsInt("CRAWL_FETCH_TIMEOUT_SECONDS", 20),
			UserAgent:           getEnv("CRAWL_USER_AGENT", "ShopAssistBot/1.0"),
		},
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", os.TempDir()),
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
		Retrieval: RetrievalConfig{
			CacheTTLSeconds: getEnvAsInt("RETRIEVAL_CACHE_TTL_SECONDS", 300),
		},
		Ingest: IngestConfig{
			BatchSize:       getEnvAsInt("INGEST_BATCH_SIZE", 10),
			StaleJobMinutes: getEnvAsInt("INGEST_STALE_JOB_MINUTES", 30),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "ai-shopassist-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
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

func getEnvAsBool(key string, fallback bool) bool {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}
