package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string
	APIKey      string // API key for authentication

	TrustedProxies []string // proxies whose X-Forwarded-For is believed

	StorageDriver     string // postgres or memory
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	GameConfigPath      string
	SignInResetCron     string
	SignInTimezone      string
	SessionIdleTimeout  time.Duration
	SessionReapSchedule string
	SweepInterval       time.Duration

	WorkerCount           int
	RateLimitRPS          float64
	RateLimitBurst        int
	EventLogRetentionDays int
	EventLogCleanupCron   string
	EventDeadLetterPath   string
	EventMaxRetries       int
	EventRetryDelay       time.Duration
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "text"),
		LogDir:      getEnv("LOG_DIR", "logs"),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", "dev"),
		APIKey:      getEnv("API_KEY", ""),

		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		StorageDriver:     getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "idlecultivation"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", 20),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),

		GameConfigPath:      getEnv("GAME_CONFIG_PATH", ConfigPathGame),
		SignInResetCron:     getEnv("SIGN_IN_RESET_CRON", DefaultSignInResetCron),
		SignInTimezone:      getEnv("SIGN_IN_TIMEZONE", "UTC"),
		SessionIdleTimeout:  getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionReapSchedule: getEnv("SESSION_REAP_SCHEDULE", DefaultReapSchedule),
		SweepInterval:       getEnvAsDuration("SWEEP_INTERVAL", 5*time.Minute),

		WorkerCount:           getEnvAsInt("WORKER_COUNT", 4),
		RateLimitRPS:          getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:        getEnvAsInt("RATE_LIMIT_BURST", 10),
		EventLogRetentionDays: getEnvAsInt("EVENT_LOG_RETENTION_DAYS", 30),
		EventLogCleanupCron:   getEnv("EVENT_LOG_CLEANUP_CRON", DefaultCleanupCron),
		EventDeadLetterPath:   getEnv("EVENT_DEADLETTER_PATH", DefaultDeadLetterPath),
		EventMaxRetries:       getEnvAsInt("EVENT_MAX_RETRIES", 5),
		EventRetryDelay:       getEnvAsDuration("EVENT_RETRY_DELAY", 2*time.Second),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q: expected %s or %s", cfg.StorageDriver, StorageDriverPostgres, StorageDriverMemory)
	}

	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("invalid SIGN_IN_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// Location resolves the sign-in time zone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.SignInTimezone)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default on
// absence or parse failure
func getEnvAsInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

// GetDBConnString returns the PostgreSQL connection URL with the
// credentials escaped
func (c *Config) GetDBConnString() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// getEnvAsList splits a comma-separated variable, dropping empty items
func getEnvAsList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
