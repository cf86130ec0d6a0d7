package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Tenant   TenantConfig
	Download DownloadConfig
	Payment  PaymentConfig
	Storage  StorageConfig
	Kafka    KafkaConfig
	Jobs     JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port          string
	Env           string
	DevHostname   string
	PublicBaseURL string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration. An empty URL disables Redis.
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// TenantConfig controls tenant resolution and its cache.
type TenantConfig struct {
	DefaultKey   string
	CacheTTL     time.Duration
	CacheBackend string // "memory" or "redis"
}

// DownloadConfig holds the policy applied when a download link is issued.
type DownloadConfig struct {
	LinkExpiry   time.Duration
	MaxDownloads int
}

// PaymentConfig holds payment provider settings
type PaymentConfig struct {
	WebhookSecret    string
	WebhookTolerance time.Duration
	CheckoutBaseURL  string
	Currency         string
}

// StorageConfig holds file storage settings
type StorageConfig struct {
	Root          string
	SigningKey    string
	SignedURLTTL  time.Duration
	MaxUploadSize int64
}

// KafkaConfig holds domain event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	PendingOrderTTL      time.Duration
	PendingOrderInterval time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Env:           getEnv("SERVER_ENV", "development"),
			DevHostname:   strings.ToLower(getEnv("DEV_HOSTNAME", "localhost")),
			PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "digimarket"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-this-in-production"),
			Issuer:        getEnv("JWT_ISSUER", "digimarket"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		},
		Tenant: TenantConfig{
			DefaultKey:   getEnv("DEFAULT_TENANT_KEY", "default"),
			CacheTTL:     getEnvAsDuration("TENANT_CACHE_TTL", time.Minute),
			CacheBackend: getEnv("TENANT_CACHE_BACKEND", "memory"),
		},
		Download: DownloadConfig{
			LinkExpiry:   getEnvAsDuration("DOWNLOAD_LINK_EXPIRY", 7*24*time.Hour),
			MaxDownloads: getEnvAsInt("DOWNLOAD_MAX_COUNT", 3),
		},
		Payment: PaymentConfig{
			WebhookSecret:    getEnv("PAYMENT_WEBHOOK_SECRET", "whsec_dev"),
			WebhookTolerance: getEnvAsDuration("PAYMENT_WEBHOOK_TOLERANCE", 5*time.Minute),
			CheckoutBaseURL:  getEnv("PAYMENT_CHECKOUT_BASE_URL", "https://checkout.example.com/pay"),
			Currency:         getEnv("PAYMENT_CURRENCY", "eur"),
		},
		Storage: StorageConfig{
			Root:          getEnv("STORAGE_ROOT", "./data/files"),
			SigningKey:    getEnv("STORAGE_SIGNING_KEY", "0000000000000000000000000000000000000000000000000000000000000000"),
			SignedURLTTL:  getEnvAsDuration("STORAGE_SIGNED_URL_TTL", 5*time.Minute),
			MaxUploadSize: int64(getEnvAsInt("STORAGE_MAX_UPLOAD_MB", 512)) << 20,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "marketplace.events"),
		},
		Jobs: JobsConfig{
			PendingOrderTTL:      getEnvAsDuration("ORDER_PENDING_TTL", 24*time.Hour),
			PendingOrderInterval: getEnvAsDuration("ORDER_PENDING_SWEEP_INTERVAL", 10*time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
