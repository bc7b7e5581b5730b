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

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cache      CacheConfig
	Cloudinary CloudinaryConfig
	Logging    LoggingConfig
	Metrics    MetricsConfig
	Features   FeatureConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	ServerName      string
}

// DatabaseConfig holds postgres connection and pool configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	ConnectTimeout      time.Duration
	SlowQueryThreshold  time.Duration
	EnableQueryLogging  bool
	EnableMetrics       bool
	HealthCheckInterval time.Duration
	MigrationsPath      string
	SSLMode             string

	// Health-wait retry policy used during startup
	MaxRetryAttempts int
	RetryBackoff     time.Duration
}

// CacheConfig holds cache provider configuration
type CacheConfig struct {
	Provider        string // "memory", "redis"
	TTL             time.Duration
	MaxKeys         int
	CleanupInterval time.Duration
	RedisURL        string
	RedisDB         int
	RedisPassword   string
	PoolSize        int
}

// CloudinaryConfig holds badge image upload configuration
type CloudinaryConfig struct {
	CloudName      string
	APIKey         string
	APISecret      string
	UploadFolder   string
	MaxFileSize    int64
	AllowedFormats []string
	MaxRetries     int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level            string
	Format           string // "json", "console"
	EnableStructured bool
	EnableSampling   bool
	SampleRate       float64
}

// MetricsConfig holds prometheus metrics configuration
type MetricsConfig struct {
	Enabled   bool
	Namespace string
	Path      string
}

// FeatureConfig toggles optional behavior
type FeatureConfig struct {
	// EnforceAcyclicPrerequisites rejects badge graphs with prerequisite
	// cycles at creation time.
	EnforceAcyclicPrerequisites bool

	// NotifyOnProjectCreation sends the organizer notification email.
	NotifyOnProjectCreation bool

	// EnableBadgeImageUploads turns the Cloudinary collaborator on.
	EnableBadgeImageUploads bool
}

// Load reads configuration from the environment, with `.env` support
// outside production.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(env),
		Cache:      loadCacheConfig(env),
		Cloudinary: loadCloudinaryConfig(),
		Logging:    loadLoggingConfig(env),
		Metrics:    loadMetricsConfig(env),
		Features:   loadFeatureConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Environment:     env,
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		ServerName:      getEnv("SERVER_NAME", "BadgeHub"),
	}

	switch env {
	case "production":
		config.GracefulTimeout = 25 * time.Second
	case "staging":
		config.GracefulTimeout = 20 * time.Second
	default:
		config.GracefulTimeout = 10 * time.Second
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	return DatabaseConfig{
		URL:                 getEnv("DATABASE_URL", "postgres://localhost:5432/badgehub?sslmode=disable"),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", defaultMaxConns(env)),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		ConnectTimeout:      getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		EnableQueryLogging:  getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		EnableMetrics:       getBoolEnv("DB_ENABLE_METRICS", true),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "migrations"),
		SSLMode:             getEnv("DB_SSL_MODE", defaultSSLMode(env)),
		MaxRetryAttempts:    getIntEnv("DB_MAX_RETRY_ATTEMPTS", 3),
		RetryBackoff:        getDurationEnv("DB_RETRY_BACKOFF", time.Second),
	}
}

func loadCacheConfig(env string) CacheConfig {
	provider := getEnv("CACHE_PROVIDER", "memory")
	if getEnv("REDIS_URL", "") != "" {
		provider = getEnv("CACHE_PROVIDER", "redis")
	}

	return CacheConfig{
		Provider:        provider,
		TTL:             getDurationEnv("CACHE_TTL", 5*time.Minute),
		MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
		CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", time.Minute),
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisDB:         getIntEnv("REDIS_DB", 0),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		PoolSize:        getIntEnv("REDIS_POOL_SIZE", 10),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	config := CloudinaryConfig{
		CloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:       getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:    getEnv("CLOUDINARY_API_SECRET", ""),
		UploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "images/badges"),
		MaxFileSize:  int64(getIntEnv("CLOUDINARY_MAX_FILE_SIZE", 5<<20)),
		MaxRetries:   getIntEnv("CLOUDINARY_MAX_RETRIES", 3),
	}

	if formats := getEnv("CLOUDINARY_ALLOWED_FORMATS", "jpg,jpeg,png,webp,gif"); formats != "" {
		config.AllowedFormats = strings.Split(formats, ",")
	}

	return config
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:            getEnv("LOG_LEVEL", defaultLogLevel(env)),
		Format:           getEnv("LOG_FORMAT", defaultLogFormat(env)),
		EnableStructured: getBoolEnv("LOG_ENABLE_STRUCTURED", env == "production"),
		EnableSampling:   getBoolEnv("LOG_ENABLE_SAMPLING", env == "production"),
		SampleRate:       getFloat64Env("LOG_SAMPLE_RATE", 1.0),
	}
}

func loadMetricsConfig(env string) MetricsConfig {
	return MetricsConfig{
		Enabled:   getBoolEnv("METRICS_ENABLED", true),
		Namespace: getEnv("METRICS_NAMESPACE", "badgehub"),
		Path:      getEnv("METRICS_PATH", "/metrics"),
	}
}

func loadFeatureConfig(env string) FeatureConfig {
	return FeatureConfig{
		EnforceAcyclicPrerequisites: getBoolEnv("FEATURE_ENFORCE_ACYCLIC_PREREQUISITES", true),
		NotifyOnProjectCreation:     getBoolEnv("FEATURE_NOTIFY_ON_PROJECT_CREATION", env == "production"),
		EnableBadgeImageUploads:     getBoolEnv("FEATURE_BADGE_IMAGE_UPLOADS", getEnv("CLOUDINARY_CLOUD_NAME", "") != ""),
	}
}

// ===============================
// VALIDATION
// ===============================

// Validate checks the loaded configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := url.Parse(c.Database.URL); err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot exceed DB_MAX_OPEN_CONNS")
	}

	switch c.Cache.Provider {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER is redis")
		}
	default:
		return fmt.Errorf("unknown cache provider %q", c.Cache.Provider)
	}

	if c.Features.EnableBadgeImageUploads {
		if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return fmt.Errorf("cloudinary credentials are required when badge image uploads are enabled")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func defaultMaxConns(env string) int {
	if env == "production" {
		return 25
	}
	return 10
}

func defaultSSLMode(env string) string {
	if env == "production" {
		return "require"
	}
	return "disable"
}

func defaultLogLevel(env string) string {
	if env == "production" {
		return "info"
	}
	return "debug"
}

func defaultLogFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat64Env(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
