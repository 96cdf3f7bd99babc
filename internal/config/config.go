package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB     DatabaseConfig
	Redis  RedisConfig
	Lipia  LipiaConfig
	Store  StoreConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// LipiaConfig contains credentials for the Lipia payment gateway.
// APIKey may be empty at startup; the initiate path then fails with a
// configuration error instead of the whole server refusing to boot.
type LipiaConfig struct {
	BaseURL     string
	APIKey      string
	CallbackURL string
	Source      string
}

// StoreConfig contains retail parameters applied at checkout.
type StoreConfig struct {
	VATRate        float64 // percent, VAT-inclusive receipts
	LoyaltyDivisor float64 // one point per this much spent
	CreditDueAfter time.Duration
}

// WorkerConfig contains interval configuration for background loops.
type WorkerConfig struct {
	PollInterval    time.Duration // settlement poll cadence per charge
	PollMaxWait     time.Duration // give up waiting for a callback after this
	ExpiryInterval  time.Duration // batch expiry sweep cadence
	NearExpiryAfter time.Duration // alert window before a batch expires
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "3000")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Lipia payment gateway
	cfg.Lipia = LipiaConfig{
		BaseURL:     getEnv("LIPIA_BASE_URL", "https://lipia-api.kreativelabske.com/api/v2"),
		APIKey:      getEnv("LIPIA_API_KEY", ""),
		CallbackURL: getEnv("LIPIA_CALLBACK_URL", ""),
		Source:      getEnv("LIPIA_SOURCE", "Kinthithe POS"),
	}

	// Store parameters
	cfg.Store = StoreConfig{
		VATRate:        getEnvFloat("VAT_RATE", 3.00),
		LoyaltyDivisor: getEnvFloat("LOYALTY_DIVISOR", 200),
	}
	var err error
	if cfg.Store.CreditDueAfter, err = parseDurationEnv("CREDIT_DUE_AFTER", "720h"); err != nil {
		return nil, fmt.Errorf("invalid CREDIT_DUE_AFTER: %w", err)
	}

	// Workers (durations)
	if cfg.Worker.PollInterval, err = parseDurationEnv("POLL_INTERVAL", "3s"); err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	if cfg.Worker.PollMaxWait, err = parseDurationEnv("POLL_MAX_WAIT", "2m"); err != nil {
		return nil, fmt.Errorf("invalid POLL_MAX_WAIT: %w", err)
	}
	if cfg.Worker.ExpiryInterval, err = parseDurationEnv("EXPIRY_CHECK_INTERVAL", "1h"); err != nil {
		return nil, fmt.Errorf("invalid EXPIRY_CHECK_INTERVAL: %w", err)
	}
	if cfg.Worker.NearExpiryAfter, err = parseDurationEnv("NEAR_EXPIRY_WINDOW", "168h"); err != nil {
		return nil, fmt.Errorf("invalid NEAR_EXPIRY_WINDOW: %w", err)
	}

	// Basic validation for DB parameters.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvFloat returns the value of an environment variable as a float or a default if empty/invalid.
func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
