// Package config loads service settings from the environment, optionally
// seeded from a dotenv file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMaxUploadBytes is the upload ceiling (2 MiB).
const DefaultMaxUploadBytes int64 = 2 << 20

// Config holds runtime settings for the service.
type Config struct {
	AppHost  string
	AppPort  string
	LogLevel string

	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	// "*" allows any origin.
	CORSAllowedOrigins []string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	JWT      JWTConfig
	Storage  StorageConfig
	Admin    AdminConfig
}

// PostgresConfig describes the user directory database.
type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DB           string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN returns the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DB)
}

// RedisConfig describes the token revocation store.
type RedisConfig struct {
	Host         string
	Port         int
	DB           int
	Password     string
	PoolSize     int
	MinIdleConns int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KafkaConfig describes the optional event broker. Publishing is disabled
// when Brokers is empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether events should be published.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// JWTConfig holds the token signing settings.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// StorageConfig selects and configures the audio file store.
type StorageConfig struct {
	AudioDir       string
	MaxUploadBytes int64
	S3             S3Config
}

// S3Config holds object storage credentials and location.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Endpoint        string // optional, for S3-compatible servers such as MinIO
}

// Enabled reports whether both credentials are present, which switches
// the file store to S3.
func (c S3Config) Enabled() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// AdminConfig is the account bootstrapped with the admin role at start-up.
// Nothing is created when either field is empty.
type AdminConfig struct {
	Username string
	Password string
}

// Load reads the dotenv file at path (a missing file is not an error),
// then builds the configuration from the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(path)

	cfg := &Config{}
	var err error

	cfg.AppHost = getEnv("APP_HOST", "localhost")
	cfg.AppPort = getEnv("PORT", getEnv("APP_PORT", "3000"))
	cfg.LogLevel = getEnv("APP_LOG_LEVEL", "info")
	cfg.CORSAllowedOrigins = splitList(getEnv("CORS_ALLOWED_ORIGINS", "*"))

	cfg.Postgres.Host = getEnv("POSTGRES_HOST", "localhost")
	cfg.Postgres.User = getEnv("POSTGRES_USER", "user")
	cfg.Postgres.Password = getEnv("POSTGRES_PASSWORD", "password")
	cfg.Postgres.DB = getEnv("POSTGRES_DB", "database")
	if cfg.Postgres.Port, err = getInt("POSTGRES_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.Postgres.MaxOpenConns, err = getInt("POSTGRES_MAX_OPEN_CONNS", 16); err != nil {
		return nil, err
	}
	if cfg.Postgres.MaxIdleConns, err = getInt("POSTGRES_MAX_IDLE_CONNS", 8); err != nil {
		return nil, err
	}

	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	if cfg.Redis.Port, err = getInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return nil, err
	}

	cfg.Kafka.Brokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", "audio-vault.events")

	cfg.JWT.Secret = getEnv("JWT_SECRET", getEnv("JWT_SECRET_KEY", ""))
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	expSeconds, err := getInt("JWT_EXP_SECOND", 3600)
	if err != nil {
		return nil, err
	}
	cfg.JWT.Expiration = time.Duration(expSeconds) * time.Second

	cfg.Storage.AudioDir = getEnv("AUDIO_DIR", "./audio")
	maxUpload, err := getInt("MAX_UPLOAD_BYTES", int(DefaultMaxUploadBytes))
	if err != nil {
		return nil, err
	}
	cfg.Storage.MaxUploadBytes = int64(maxUpload)
	cfg.Storage.S3 = S3Config{
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Region:          getEnv("AWS_REGION", "us-east-1"),
		Bucket:          getEnv("AWS_BUCKET_NAME", ""),
		Endpoint:        getEnv("AWS_ENDPOINT_URL", ""),
	}
	if cfg.Storage.S3.Enabled() && cfg.Storage.S3.Bucket == "" {
		return nil, fmt.Errorf("AWS_BUCKET_NAME is required when S3 credentials are set")
	}

	cfg.Admin.Username = getEnv("ADMIN_USERNAME", "")
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", "")

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
