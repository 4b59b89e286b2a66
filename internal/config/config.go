package config

import (
	"os"
	"strconv"
	"strings"
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
	AutoMigrate        bool
}

// MinIOConfig holds object storage settings for MinIO. Export files are written to Bucket.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds the cache connection used for token verification results and unread counters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig configures the publisher for integration records. Publishing is disabled when
// Brokers is empty.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// GoogleConfig holds the OAuth2 client registration used for "Sign in with Google".
type GoogleConfig struct {
	// ClientIDs lists accepted audiences for identity tokens. The first entry is used for the
	// authorization code flow.
	ClientIDs      []string
	ClientSecret   string
	RedirectURL    string
	TokenInfoURL   string
	HTTPTimeout    time.Duration
	VerifyCacheTTL time.Duration
}

// ClientID returns the primary OAuth2 client id, or "" when none is configured.
func (g GoogleConfig) ClientID() string {
	if len(g.ClientIDs) == 0 {
		return ""
	}
	return g.ClientIDs[0]
}

// JWTConfig holds the session token settings.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string
	Development bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Google   GoogleConfig
	JWT      JWTConfig
	Log      LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"),
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
			AutoMigrate:        getEnvBool("DB_AUTO_MIGRATE", true),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "exports"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvList("KAFKA_BROKERS"),
			Topic:        getEnv("KAFKA_INTEGRATION_TOPIC", "integration.records"),
			WriteTimeout: getEnvDuration("KAFKA_WRITE_TIMEOUT", 10*time.Second),
		},
		Google: GoogleConfig{
			ClientIDs:      getEnvList("GOOGLE_CLIENT_ID"),
			ClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:    getEnv("GOOGLE_REDIRECT_URI", ""),
			TokenInfoURL:   getEnv("GOOGLE_TOKENINFO_URL", "https://oauth2.googleapis.com/tokeninfo"),
			HTTPTimeout:    getEnvDuration("GOOGLE_HTTP_TIMEOUT", 10*time.Second),
			VerifyCacheTTL: getEnvDuration("GOOGLE_VERIFY_CACHE_TTL", 5*time.Minute),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET_KEY", ""),
			Issuer: getEnv("JWT_ISSUER", "hisapi"),
			TTL:    getEnvDuration("JWT_TTL", time.Hour),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvBool("LOG_DEVELOPMENT", false),
		},
	}
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

// getEnvDuration accepts Go duration strings ("90s", "1h").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
