package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
// URL, when set, takes precedence over the individual components.
type DatabaseConfig struct {
	URL                string
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

// Enabled reports whether object storage was configured at all.
func (c MinIOConfig) Enabled() bool {
	return c.Endpoint != ""
}

// AuthConfig holds session token and password hashing settings.
type AuthConfig struct {
	Secret        string
	SessionMaxAge time.Duration
	CookieName    string
	CookieSecure  bool
	BcryptCost    int
}

// MarketDataConfig holds the third-party quote endpoints. An empty CoinMarketCap key
// switches crypto quotes to simulated prices.
type MarketDataConfig struct {
	YahooBaseURL         string
	CoinMarketCapBaseURL string
	CoinMarketCapKey     string
	ExchangeRateBaseURL  string
	CacheTTL             time.Duration
	Timeout              time.Duration
}

// RateLimitConfig configures the global request limiter. RPS <= 0 disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// SeedConfig describes the administrator account created by `financectl seed-admin`.
type SeedConfig struct {
	AdminEmail    string
	AdminUsername string
	AdminPassword string
	AdminName     string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	Environment   string
	LogLevel      string
	PublicBaseURL string
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Auth          AuthConfig
	MarketData    MarketDataConfig
	RateLimit     RateLimitConfig
	Seed          SeedConfig
}

var (
	ErrAuthSecretRequired    = errors.New("AUTH_SECRET is required")
	ErrPublicBaseURLRequired = errors.New("PUBLIC_BASE_URL is required in production")
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		Environment:   getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
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
		Auth: AuthConfig{
			Secret:        getEnv("AUTH_SECRET", ""),
			SessionMaxAge: getEnvDuration("SESSION_MAX_AGE", 30*24*time.Hour),
			CookieName:    getEnv("SESSION_COOKIE_NAME", "session_token"),
			CookieSecure:  getEnvBool("SESSION_COOKIE_SECURE", false),
			BcryptCost:    getEnvInt("BCRYPT_COST", 12),
		},
		MarketData: MarketDataConfig{
			YahooBaseURL:         getEnv("MARKET_YAHOO_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			CoinMarketCapBaseURL: getEnv("MARKET_CMC_BASE_URL", "https://pro-api.coinmarketcap.com/v1"),
			CoinMarketCapKey:     getEnv("CMC_API_KEY", ""),
			ExchangeRateBaseURL:  getEnv("MARKET_FX_BASE_URL", "https://api.exchangerate-api.com/v4/latest"),
			CacheTTL:             getEnvDuration("MARKET_CACHE_TTL", 15*time.Minute),
			Timeout:              getEnvDuration("MARKET_TIMEOUT", 10*time.Second),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
			Burst: getEnvInt("RATE_LIMIT_BURST", 30),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@example.com"),
			AdminUsername: getEnv("SEED_ADMIN_USERNAME", "admin"),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
			AdminName:     getEnv("SEED_ADMIN_NAME", "Administrator"),
		},
	}
}

// IsProduction reports whether APP_ENV is "production".
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// Validate checks the settings the server cannot start without.
func (c *AppConfig) Validate() error {
	if c.Auth.Secret == "" {
		return ErrAuthSecretRequired
	}
	if c.IsProduction() && c.PublicBaseURL == "" {
		return ErrPublicBaseURLRequired
	}
	return nil
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

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
