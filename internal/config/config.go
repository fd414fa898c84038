// Package config provides application configuration management
// with validation and environment parsing
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the gallery server configuration
type Config struct {
	Environment string
	Port        string
	Host        string
	DatabaseURL string
	Storage     StorageConfig
	Cache       CacheConfig
	CSRF        CSRFConfig
	Logging     *LoggingConfig
	Server      *ServerConfig

	// LegacyUploadEnabled mounts POST /api/upload with the {success, error} envelope
	LegacyUploadEnabled bool
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	Region          string
	MaxUploadSize   int64
	AllowedTypes    []string

	// ReconcileOnStart imports bucket objects that have no photo record
	ReconcileOnStart bool
}

// CacheConfig holds Redis/Valkey configuration
type CacheConfig struct {
	Enabled         bool
	Address         string
	Password        string
	Database        int
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
	MinIdleConns    int
	PoolTimeout     time.Duration
	DefaultTTL      time.Duration
}

// CSRFConfig controls anti-forgery protection of state-changing requests
type CSRFConfig struct {
	Enabled    bool
	HeaderName string
	TokenTTL   time.Duration
	CookieName string
	Secure     bool
	// AuthKey signs the token cookie: base64 of 32 bytes. Empty generates
	// one at startup, shared through the cache when it is enabled.
	AuthKey string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultCSRFHeader is the header name used when none is configured
const DefaultCSRFHeader = "X-CSRF-TOKEN"

// CSRFAuthKeyLength is the size of the token cookie signing key
const CSRFAuthKeyLength = 32

// DecodeAuthKey returns the configured signing key
func (c CSRFConfig) DecodeAuthKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.AuthKey)
	if err != nil {
		return nil, fmt.Errorf("CSRF auth key must be base64: %w", err)
	}
	if len(key) != CSRFAuthKeyLength {
		return nil, fmt.Errorf("CSRF auth key must decode to %d bytes, got %d", CSRFAuthKeyLength, len(key))
	}
	return key, nil
}

// Load creates a new configuration from environment variables with validation
func Load() (*Config, error) {
	useSSL, _ := strconv.ParseBool(getEnv("STORAGE_USE_SSL", "false"))
	maxUploadSize := parseSize(getEnv("MAX_UPLOAD_SIZE", "10MB"))
	allowedTypes := parseList(getEnv("ALLOWED_FILE_TYPES", "image/jpeg,image/png,image/gif,image/webp,image/bmp"))

	readTimeout, _ := time.ParseDuration(getEnv("READ_TIMEOUT", "10s"))
	writeTimeout, _ := time.ParseDuration(getEnv("WRITE_TIMEOUT", "30s"))
	idleTimeout, _ := time.ParseDuration(getEnv("SERVER_TIMEOUT", "60s"))

	cacheEnabled, _ := strconv.ParseBool(getEnv("CACHE_ENABLED", "false"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cacheTTL, _ := time.ParseDuration(getEnv("CACHE_TTL", "1h"))

	csrfEnabled, _ := strconv.ParseBool(getEnv("CSRF_ENABLED", "true"))
	csrfTTL, _ := time.ParseDuration(getEnv("CSRF_TTL", "12h"))
	csrfSecure, _ := strconv.ParseBool(getEnv("CSRF_COOKIE_SECURE", "false"))

	legacyUpload, _ := strconv.ParseBool(getEnv("LEGACY_UPLOAD_ENABLED", "false"))
	reconcile, _ := strconv.ParseBool(getEnv("STORAGE_RECONCILE_ON_START", "false"))

	config := &Config{
		Environment: getEnv("GO_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		Host:        getEnv("HOST", "localhost"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "photos"),
			UseSSL:          useSSL,
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			MaxUploadSize:   maxUploadSize,
			AllowedTypes:    allowedTypes,

			ReconcileOnStart: reconcile,
		},
		Cache: CacheConfig{
			Enabled:         cacheEnabled,
			Address:         getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password:        getEnv("REDIS_PASSWORD", ""),
			Database:        redisDB,
			MaxRetries:      3,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolSize:        10,
			MinIdleConns:    2,
			PoolTimeout:     4 * time.Second,
			DefaultTTL:      cacheTTL,
		},
		CSRF: CSRFConfig{
			Enabled:    csrfEnabled,
			HeaderName: getEnv("CSRF_HEADER_NAME", DefaultCSRFHeader),
			TokenTTL:   csrfTTL,
			CookieName: getEnv("CSRF_COOKIE_NAME", "GALLERY_SESSION"),
			Secure:     csrfSecure,
			AuthKey:    os.Getenv("CSRF_AUTH_KEY"),
		},
		Logging: &LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Server: &ServerConfig{
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		LegacyUploadEnabled: legacyUpload,
	}

	// Validate configuration before returning
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseSize parses size strings like "10MB", "512KB" into bytes
func parseSize(sizeStr string) int64 {
	sizeStr = strings.ToUpper(strings.TrimSpace(sizeStr))

	if strings.HasSuffix(sizeStr, "MB") {
		numStr := strings.TrimSuffix(sizeStr, "MB")
		if num, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return num * 1024 * 1024
		}
	}

	if strings.HasSuffix(sizeStr, "KB") {
		numStr := strings.TrimSuffix(sizeStr, "KB")
		if num, err := strconv.ParseInt(numStr, 10, 64); err == nil {
			return num * 1024
		}
	}

	// Default to 10MB if parsing fails
	return 10 * 1024 * 1024
}

// parseList parses comma-separated strings into slices
func parseList(listStr string) []string {
	if listStr == "" {
		return []string{}
	}

	items := strings.Split(listStr, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// MustLoad loads configuration and panics on error
// Useful for startup scenarios where invalid config should crash the application
func MustLoad() *Config {
	config, err := Load()
	if err != nil {
		panic(err)
	}
	return config
}
