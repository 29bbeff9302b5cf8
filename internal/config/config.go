package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// GCSConfig holds Google Cloud Storage settings.
// CredentialsFile is optional; application default credentials are used when empty.
type GCSConfig struct {
	Bucket          string
	CredentialsFile string
}

// Storage backends selectable through STORAGE_BACKEND.
const (
	StorageBackendMinIO = "minio"
	StorageBackendGCS   = "gcs"
)

// RedisConfig holds settings for the Redis instance backing the OCR queues.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Enqueue failure policies selectable through OCR_ENQUEUE_FAILURE_POLICY.
const (
	EnqueuePolicyLeave    = "leave"
	EnqueuePolicyRollback = "rollback"
)

// OCRConfig holds the OCR queue contract and the output poller schedule.
type OCRConfig struct {
	InputQueue        string
	OutputQueue       string
	DeadLetterQueue   string
	ConsumerGroup     string
	ConsumerName      string
	FormVersion       string
	PollInterval      time.Duration
	BatchSize         int
	VisibilityTimeout time.Duration
	MaxDequeueCount   int
	ResultTimeout     time.Duration
	ResultMaxBytes    int64

	EnqueueRetries       int
	EnqueueRetryDelay    time.Duration
	EnqueueFailurePolicy string
}

// DownloadConfig bounds outbound fetches of source documents.
type DownloadConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost           string
	Port              string
	Timezone          string
	OriginalURLExpiry time.Duration
	StorageBackend    string
	Database          DatabaseConfig
	MinIO             MinIOConfig
	GCS               GCSConfig
	Redis             RedisConfig
	OCR               OCRConfig
	Download          DownloadConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	hostname, _ := os.Hostname()
	return &AppConfig{
		AppHost:           getEnv("APP_HOST", "localhost:8080"),
		Port:              getEnv("PORT", "8080"), // default only for non-sensitive value
		Timezone:          getEnv("APP_TIMEZONE", "UTC"),
		OriginalURLExpiry: time.Duration(getEnvInt("ORIGINAL_URL_EXPIRY_MIN", 60)) * time.Minute,
		StorageBackend:    getEnv("STORAGE_BACKEND", StorageBackendMinIO),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", ""),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  time.Duration(getEnvInt("REDIS_DIAL_TIMEOUT_MS", 5000)) * time.Millisecond,
			ReadTimeout:  time.Duration(getEnvInt("REDIS_READ_TIMEOUT_MS", 3000)) * time.Millisecond,
			WriteTimeout: time.Duration(getEnvInt("REDIS_WRITE_TIMEOUT_MS", 3000)) * time.Millisecond,
		},
		OCR: OCRConfig{
			InputQueue:           getEnv("OCR_QUEUE_IN", "declarations-in"),
			OutputQueue:          getEnv("OCR_QUEUE_OUT", "declarations-out"),
			DeadLetterQueue:      getEnv("OCR_QUEUE_DEAD_LETTER", "declarations-out-poison"),
			ConsumerGroup:        getEnv("OCR_CONSUMER_GROUP", "casedocs"),
			ConsumerName:         getEnv("OCR_CONSUMER_NAME", hostname),
			FormVersion:          getEnv("OCR_FORM_VERSION", "1"),
			PollInterval:         time.Duration(getEnvInt("OCR_POLL_INTERVAL_SEC", 30)) * time.Second,
			BatchSize:            getEnvInt("OCR_BATCH_SIZE", 32),
			VisibilityTimeout:    time.Duration(getEnvInt("OCR_VISIBILITY_TIMEOUT_SEC", 300)) * time.Second,
			MaxDequeueCount:      getEnvInt("OCR_MAX_DEQUEUE_COUNT", 5),
			ResultTimeout:        time.Duration(getEnvInt("OCR_RESULT_TIMEOUT_SEC", 30)) * time.Second,
			ResultMaxBytes:       int64(getEnvInt("OCR_RESULT_MAX_BYTES", 16<<20)),
			EnqueueRetries:       getEnvInt("OCR_ENQUEUE_RETRIES", 0),
			EnqueueRetryDelay:    time.Duration(getEnvInt("OCR_ENQUEUE_RETRY_DELAY_MS", 500)) * time.Millisecond,
			EnqueueFailurePolicy: getEnv("OCR_ENQUEUE_FAILURE_POLICY", EnqueuePolicyLeave),
		},
		Download: DownloadConfig{
			Timeout:  time.Duration(getEnvInt("DOWNLOAD_TIMEOUT_SEC", 30)) * time.Second,
			MaxBytes: int64(getEnvInt("DOWNLOAD_MAX_BYTES", 50<<20)),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	switch c.StorageBackend {
	case StorageBackendMinIO, StorageBackendGCS:
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.OCR.EnqueueFailurePolicy {
	case EnqueuePolicyLeave, EnqueuePolicyRollback:
	default:
		return fmt.Errorf("unsupported OCR_ENQUEUE_FAILURE_POLICY %q", c.OCR.EnqueueFailurePolicy)
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.OCR.PollInterval <= 0 {
		return fmt.Errorf("OCR_POLL_INTERVAL_SEC must be positive")
	}
	if c.OCR.BatchSize <= 0 {
		return fmt.Errorf("OCR_BATCH_SIZE must be positive")
	}
	if c.OCR.ConsumerName == "" {
		return fmt.Errorf("OCR_CONSUMER_NAME is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
