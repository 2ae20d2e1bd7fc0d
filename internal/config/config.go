package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store and snapshot backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	ServerPort         string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	CorsAllowedOrigins []string

	// Database configuration
	StoreBackend        string
	DBHost              string
	DBPort              int
	DBUser              string
	DBPassword          string
	DBName              string
	DBSSLMode           string
	DBMaxConns          int32
	DBMinConns          int32
	DBMaxConnLifetime   time.Duration
	DBMaxConnIdleTime   time.Duration
	DBHealthCheckPeriod time.Duration

	// Snapshot cache configuration
	SnapshotBackend string
	RedisHost       string
	RedisPort       int
	RedisPassword   string
	RedisDB         int
	SnapshotTTL     time.Duration
	SnapshotHistory int
	AutosaveDelay   time.Duration

	// Content lifecycle configuration
	TrashRetention     time.Duration
	TrashSweepInterval time.Duration
	LazyTrashSweep     bool
	SeedExamplePosts   bool
	SessionTTL         time.Duration

	// Writing assistant configuration
	GeminiAPIKey string
	GeminiModel  string

	// GoogleClientID is the OAuth client provider ID tokens are issued to.
	// Provider sign-in is disabled when it is empty.
	GoogleClientID string

	// Logging configuration
	LogLevel string

	// MigrationsDir is applied at startup when the store backend is postgres
	MigrationsDir string
}

// Load loads configuration from .env files and environment variables.
// Variables already present in the environment take precedence.
func Load() (*Config, error) {
	loadDotEnvs()

	cfg := &Config{
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		ReadTimeout:         getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:        getEnvDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:         getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
		CorsAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		StoreBackend:        getEnv("STORE_BACKEND", BackendPostgres),
		DBHost:              getEnv("DB_HOST", "localhost"),
		DBPort:              getEnvInt("DB_PORT", 5432),
		DBUser:              getEnv("DB_USER", "postgres"),
		DBPassword:          getEnv("DB_PASSWORD", "postgres"),
		DBName:              getEnv("DB_NAME", "taman_digital"),
		DBSSLMode:           getEnv("DB_SSL_MODE", "disable"),
		DBMaxConns:          int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBMinConns:          int32(getEnvInt("DB_MIN_CONNS", 2)),
		DBMaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", time.Hour),
		DBMaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", 30*time.Minute),
		DBHealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
		SnapshotBackend:     getEnv("SNAPSHOT_BACKEND", BackendRedis),
		RedisHost:           getEnv("REDIS_HOST", "localhost"),
		RedisPort:           getEnvInt("REDIS_PORT", 6379),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             getEnvInt("REDIS_DB", 0),
		SnapshotTTL:         getEnvDuration("SNAPSHOT_TTL", 24*time.Hour),
		SnapshotHistory:     getEnvInt("SNAPSHOT_HISTORY", 3),
		AutosaveDelay:       getEnvDuration("AUTOSAVE_DEBOUNCE", 2*time.Second),
		TrashRetention:      getEnvDuration("TRASH_RETENTION", 30*24*time.Hour),
		TrashSweepInterval:  getEnvDuration("TRASH_SWEEP_INTERVAL", time.Hour),
		LazyTrashSweep:      getEnvBool("LAZY_TRASH_SWEEP", true),
		SeedExamplePosts:    getEnvBool("SEED_EXAMPLE_POSTS", true),
		SessionTTL:          getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "migrations"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// MigrationURL returns the PostgreSQL URL golang-migrate connects with.
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + strconv.Itoa(c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// RedisAddr returns host:port of the snapshot redis.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

// validate validates the configuration.
func (c *Config) validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	if c.StoreBackend != BackendPostgres && c.StoreBackend != BackendMemory {
		return fmt.Errorf("STORE_BACKEND must be %q or %q", BackendPostgres, BackendMemory)
	}
	if c.SnapshotBackend != BackendRedis && c.SnapshotBackend != BackendMemory {
		return fmt.Errorf("SNAPSHOT_BACKEND must be %q or %q", BackendRedis, BackendMemory)
	}
	if c.StoreBackend == BackendPostgres {
		if c.DBHost == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.DBUser == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.DBName == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	}
	if c.SnapshotHistory < 1 {
		return fmt.Errorf("SNAPSHOT_HISTORY must be at least 1")
	}
	if c.TrashRetention <= 0 {
		return fmt.Errorf("TRASH_RETENTION must be positive")
	}
	if c.TrashSweepInterval < 0 {
		return fmt.Errorf("TRASH_SWEEP_INTERVAL must not be negative")
	}
	if c.AutosaveDelay <= 0 {
		return fmt.Errorf("AUTOSAVE_DEBOUNCE must be positive")
	}
	return nil
}

// loadDotEnvs loads .env files for the current TAMAN_ENV. Earlier files win,
// since godotenv never overrides a variable that is already set.
func loadDotEnvs() {
	env := os.Getenv("TAMAN_ENV")
	if env == "" {
		env = "dev"
	}

	_ = godotenv.Load(".env." + env + ".local")
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env." + env)
	_ = godotenv.Load(".env")
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as bool with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList gets a comma separated environment variable with a default value.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
