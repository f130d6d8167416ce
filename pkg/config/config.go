package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// StripeConfig holds payment provider configuration
type StripeConfig struct {
	APIBaseURL    string
	SecretKey     string
	WebhookSecret string
	// MaxClockSkew bounds the accepted age of a signed webhook timestamp.
	MaxClockSkew time.Duration
}

// BillingConfig holds the fixed issuer identity printed on invoices
// and the invoice payment terms.
type BillingConfig struct {
	IssuerName     string
	IssuerTagline  string
	IssuerAddress  string
	IssuerCity     string
	IssuerCountry  string
	IssuerPhone    string
	IssuerEmail    string
	IBAN           string
	BIC            string
	TaxRate        float64
	DueDays        int
	RegistryFooter string
}

// RedisConfig holds redis configuration for the webhook dedupe cache
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds photo object storage configuration
type StorageConfig struct {
	PhotoRoot string
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	JWT         JWTConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Stripe      StripeConfig
	Billing     BillingConfig
	Redis       RedisConfig
	Storage     StorageConfig
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", serviceName),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
		Stripe: StripeConfig{
			APIBaseURL:    getEnv("STRIPE_API_BASE_URL", "https://api.stripe.com/v1"),
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			MaxClockSkew:  getEnvAsDuration("STRIPE_WEBHOOK_MAX_SKEW", 5*time.Minute),
		},
		Billing: BillingConfig{
			IssuerName:     getEnv("BILLING_ISSUER_NAME", "Fenstri GmbH"),
			IssuerTagline:  getEnv("BILLING_ISSUER_TAGLINE", "Professioneller Fensterservice"),
			IssuerAddress:  getEnv("BILLING_ISSUER_ADDRESS", "Musterstraße 123"),
			IssuerCity:     getEnv("BILLING_ISSUER_CITY", "10115 Berlin"),
			IssuerCountry:  getEnv("BILLING_ISSUER_COUNTRY", "Deutschland"),
			IssuerPhone:    getEnv("BILLING_ISSUER_PHONE", "+49 30 123 456 789"),
			IssuerEmail:    getEnv("BILLING_ISSUER_EMAIL", "info@fenstri.de"),
			IBAN:           getEnv("BILLING_IBAN", "DE12 3456 7890 1234 5678 90"),
			BIC:            getEnv("BILLING_BIC", "DEUTDEFF"),
			TaxRate:        getEnvAsFloat("BILLING_TAX_RATE", 0.19),
			DueDays:        getEnvAsInt("BILLING_DUE_DAYS", 14),
			RegistryFooter: getEnv("BILLING_REGISTRY_FOOTER", "Amtsgericht Berlin HRB 12345 • USt-IdNr.: DE123456789"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Storage: StorageConfig{
			PhotoRoot: getEnv("PHOTO_STORAGE_ROOT", "./data/workorder-photos"),
		},
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as floats
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
