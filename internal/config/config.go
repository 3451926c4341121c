package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Storage  StorageConfig
	Features FeatureFlags
}

type ServerConfig struct {
	Port         int
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

type AuthConfig struct {
	JWTSecret   string
	EmailSecret string
	TokenTTL    time.Duration
	EmailTTL    time.Duration
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type StorageConfig struct {
	BaseURL string
	Bucket  string
	Timeout time.Duration
}

type FeatureFlags struct {
	EnableOrderEvents  bool
	EnableCatalogCache bool
	EnableEmails       bool
}

// Load reads configuration from the environment, consulting an optional
// .env file first.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			BaseURL:      getEnvString("SERVER_BASE_URL", "http://localhost:8080"),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "shop"),
			Password:     getEnvString("DB_PASSWORD", "shop"),
			Name:         getEnvString("DB_NAME", "shop"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnvString("KAFKA_BROKERS", "localhost:9092"), ","),
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "shop.orders"),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnvString("JWT_SECRET", "dev-secret"),
			EmailSecret: getEnvString("EMAIL_SECRET", "dev-email-secret"),
			TokenTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 1000)) * time.Hour,
			EmailTTL:    time.Duration(getEnvInt("EMAIL_TOKEN_TTL_MINUTES", 60)) * time.Minute,
		},
		SMTP: SMTPConfig{
			Host: getEnvString("SMTP_HOST", "localhost"),
			Port: getEnvInt("SMTP_PORT", 587),
			User: getEnvString("SMTP_USER", ""),
			Pass: getEnvString("SMTP_PASS", ""),
			From: getEnvString("SMTP_FROM", "no-reply@localhost"),
		},
		Storage: StorageConfig{
			BaseURL: getEnvString("STORAGE_URL", "http://localhost:9000"),
			Bucket:  getEnvString("STORAGE_BUCKET", "product-images"),
			Timeout: time.Duration(getEnvInt("STORAGE_TIMEOUT", 30)) * time.Second,
		},
		Features: FeatureFlags{
			EnableOrderEvents:  getEnvBool("ENABLE_ORDER_EVENTS", false),
			EnableCatalogCache: getEnvBool("ENABLE_CATALOG_CACHE", false),
			EnableEmails:       getEnvBool("ENABLE_EMAILS", false),
		},
	}
}

func getEnvString(key, defaultValue string) string {
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
