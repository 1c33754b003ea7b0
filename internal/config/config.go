package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	Gemini    GeminiConfig
	Embedding EmbeddingConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Pipeline  PipelineConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port string `validate:"required"`
	Env  string `validate:"oneof=development staging production test"`
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64 `validate:"gte=1"`
	Enabled    bool
}

type GeminiConfig struct {
	APIKey string
	Model  string `validate:"required"`
}

type EmbeddingConfig struct {
	Model      string        `validate:"required"`
	MaxRetries int           `validate:"gte=1"`
	RetryDelay time.Duration `validate:"gte=0"`
	BatchSize  int           `validate:"gte=1,lte=250"`
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	CacheTTL time.Duration
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64 `validate:"gte=1"`
}

type WorkerConfig struct {
	Concurrency  int           `validate:"gte=1"`
	PollInterval time.Duration `validate:"gt=0"`
}

// PipelineConfig holds the tunables of the screening pipeline. The filter slack,
// max buffer and semantic-weight blend are empirical and kept overridable.
type PipelineConfig struct {
	PoolSize        int     `validate:"gte=1"`
	TopN            int     `validate:"gte=1"`
	TopK            int     `validate:"gte=1"`
	ChunkSize       int     `validate:"gte=50"`
	MinSlack        float64 `validate:"gte=0"`
	MaxBuffer       float64 `validate:"gte=0"`
	SectionWeight   float64 `validate:"gte=0,lte=1"`
	DiversityWeight float64 `validate:"gte=0,lte=1"`
	WordCountWeight float64 `validate:"gte=0,lte=1"`
	WordCountCap    int     `validate:"gte=1"`
	DiversityScale  float64 `validate:"gt=0"`
	CurrentDate     time.Time
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_screener"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_chunks"),
			VectorSize: uint64(getEnvAsInt64("QDRANT_VECTOR_SIZE", 768)),
			Enabled:    getEnvAsBool("QDRANT_ENABLED", true),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Embedding: EmbeddingConfig{
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			MaxRetries: getEnvAsInt("EMBEDDING_MAX_RETRIES", 3),
			RetryDelay: getEnvAsDuration("EMBEDDING_RETRY_DELAY", "1s"),
			BatchSize:  getEnvAsInt("EMBEDDING_BATCH_SIZE", 100),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			CacheTTL: getEnvAsDuration("EMBEDDING_CACHE_TTL", "168h"),
		},
		Storage: StorageConfig{
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 52428800),
		},
		Worker: WorkerConfig{
			Concurrency:  getEnvAsInt("WORKER_CONCURRENCY", 3),
			PollInterval: getEnvAsDuration("WORKER_POLL_INTERVAL", "10s"),
		},
		Pipeline: PipelineConfig{
			PoolSize:        getEnvAsInt("PIPELINE_POOL_SIZE", 10),
			TopN:            getEnvAsInt("PIPELINE_TOP_N", 8),
			TopK:            getEnvAsInt("PIPELINE_TOP_K", 5),
			ChunkSize:       getEnvAsInt("PIPELINE_CHUNK_SIZE", 1000),
			MinSlack:        getEnvAsFloat("FILTER_MIN_SLACK", 0.3),
			MaxBuffer:       getEnvAsFloat("FILTER_MAX_BUFFER", 0.5),
			SectionWeight:   getEnvAsFloat("WEIGHT_SECTION", 0.35),
			DiversityWeight: getEnvAsFloat("WEIGHT_DIVERSITY", 0.25),
			WordCountWeight: getEnvAsFloat("WEIGHT_WORD_COUNT", 0.40),
			WordCountCap:    getEnvAsInt("WORD_COUNT_CAP", 600),
			DiversityScale:  getEnvAsFloat("DIVERSITY_SCALE", 0.5),
			CurrentDate:     getEnvAsDate("PIPELINE_CURRENT_DATE", time.Now()),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}
}

// Validate checks value ranges. Secrets are not required here so that the CLI
// can run against local fakes.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

// getEnvAsDate parses a YYYY-MM-DD date; the pipeline treats it as "today".
func getEnvAsDate(key string, defaultValue time.Time) time.Time {
	valueStr := getEnv(key, "")
	if date, err := time.Parse("2006-01-02", valueStr); err == nil {
		return date
	}
	return defaultValue
}
