// Package config loads concertlog settings from the environment, optionally
// preloaded from an env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when present and no other file is named.
const DefaultEnvFile = "config/local.env"

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Security   SecurityConfig
	CORS       CORSConfig
	Logging    LoggingConfig
	Autofill   AutofillConfig
	Normalizer NormalizerConfig
	Seed       SeedConfig
	Keepalive  KeepaliveConfig
}

// DatabaseConfig holds database connection settings. An empty URL runs the
// server in offline mode on the bundled dataset.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port int
	Host string
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds token signing and bootstrap account settings
type SecurityConfig struct {
	JWTSecret        string
	TokenTTL         time.Duration
	RememberTokenTTL time.Duration
	OwnerEmail       string
	OwnerPassword    string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AutofillConfig holds the Gemini client and rate limit settings.
type AutofillConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	RateLimit float64 // requests per second per client IP
	Burst     int
}

// Enabled reports whether an API key is configured.
func (a AutofillConfig) Enabled() bool {
	return a.APIKey != ""
}

// NormalizerConfig points at an optional alias table.
type NormalizerConfig struct {
	AliasesPath string
}

// SeedConfig controls loading the bundled dataset into an empty database.
type SeedConfig struct {
	OnEmpty bool
}

// KeepaliveConfig controls the background database probe. Zero disables it.
type KeepaliveConfig struct {
	Interval time.Duration
}

// LoadEnvFile preloads variables from path without overriding ones already
// set. A missing default file is not an error.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []string
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	collect(cfg.loadDatabase())
	collect(cfg.loadServer())
	collect(cfg.loadSecurity())
	cfg.loadCORS()
	cfg.loadLogging()
	collect(cfg.loadAutofill())
	cfg.Normalizer.AliasesPath = os.Getenv("NORMALIZER_ALIASES_PATH")
	collect(cfg.loadSeedAndKeepalive())

	if len(errs) > 0 {
		return nil, fmt.Errorf("load config:\n  - %s", strings.Join(errs, "\n  - "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadDatabase() error {
	c.Database.URL = os.Getenv("DATABASE_URL")
	if c.Database.URL != "" {
		return nil
	}

	c.Database.Host = getEnvOrDefault("DB_HOST", "localhost")
	c.Database.User = os.Getenv("DB_USER")
	c.Database.Password = os.Getenv("DB_PASSWORD")
	c.Database.Name = os.Getenv("DB_NAME")
	c.Database.SSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	port, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return fmt.Errorf("invalid DB_PORT: %w", err)
	}
	c.Database.Port = port

	if c.Database.User != "" && c.Database.Name != "" {
		c.Database.URL = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.Name,
			c.Database.SSLMode,
		)
	}
	return nil
}

func (c *Config) loadServer() error {
	port, err := strconv.Atoi(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		return fmt.Errorf("invalid PORT: %w", err)
	}
	c.Server.Port = port
	c.Server.Host = getEnvOrDefault("HOST", "0.0.0.0")
	return nil
}

func (c *Config) loadSecurity() error {
	c.Security.JWTSecret = os.Getenv("JWT_SECRET")
	c.Security.OwnerEmail = os.Getenv("OWNER_EMAIL")
	c.Security.OwnerPassword = os.Getenv("OWNER_PASSWORD")

	var err error
	if c.Security.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return err
	}
	c.Security.RememberTokenTTL, err = getDuration("REMEMBER_TOKEN_TTL", 30*24*time.Hour)
	return err
}

func (c *Config) loadCORS() {
	originsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	if originsEnv == "" {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
		return
	}
	for _, origin := range strings.Split(originsEnv, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			c.CORS.AllowedOrigins = append(c.CORS.AllowedOrigins, origin)
		}
	}
}

func (c *Config) loadLogging() {
	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", "info")
	c.Logging.Format = getEnvOrDefault("LOG_FORMAT", "json")
}

func (c *Config) loadAutofill() error {
	c.Autofill.APIKey = os.Getenv("GEMINI_API_KEY")
	c.Autofill.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash")
	c.Autofill.BaseURL = os.Getenv("GEMINI_BASE_URL")

	limit, err := strconv.ParseFloat(getEnvOrDefault("AUTOFILL_RATE_LIMIT", "0.2"), 64)
	if err != nil {
		return fmt.Errorf("invalid AUTOFILL_RATE_LIMIT: %w", err)
	}
	c.Autofill.RateLimit = limit

	burst, err := strconv.Atoi(getEnvOrDefault("AUTOFILL_BURST", "3"))
	if err != nil {
		return fmt.Errorf("invalid AUTOFILL_BURST: %w", err)
	}
	c.Autofill.Burst = burst
	return nil
}

func (c *Config) loadSeedAndKeepalive() error {
	onEmpty, err := strconv.ParseBool(getEnvOrDefault("SEED_ON_EMPTY", "true"))
	if err != nil {
		return fmt.Errorf("invalid SEED_ON_EMPTY: %w", err)
	}
	c.Seed.OnEmpty = onEmpty

	c.Keepalive.Interval, err = getDuration("KEEPALIVE_INTERVAL", 0)
	return err
}

// Validate checks that all required configuration is present and valid
func (c *Config) Validate() error {
	var errors []string

	if c.Security.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	} else if len(c.Security.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.Security.TokenTTL <= 0 {
		errors = append(errors, "TOKEN_TTL must be positive")
	}
	if c.Security.RememberTokenTTL < c.Security.TokenTTL {
		errors = append(errors, "REMEMBER_TOKEN_TTL must not be shorter than TOKEN_TTL")
	}
	if (c.Security.OwnerEmail == "") != (c.Security.OwnerPassword == "") {
		errors = append(errors, "OWNER_EMAIL and OWNER_PASSWORD must be set together")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, "PORT must be between 1 and 65535")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		errors = append(errors, "LOG_LEVEL must be one of: debug, info, warn, error")
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		errors = append(errors, "LOG_FORMAT must be one of: json, text")
	}

	if c.Autofill.RateLimit <= 0 {
		errors = append(errors, "AUTOFILL_RATE_LIMIT must be positive")
	}
	if c.Autofill.Burst < 1 {
		errors = append(errors, "AUTOFILL_BURST must be at least 1")
	}
	if c.Keepalive.Interval < 0 {
		errors = append(errors, "KEEPALIVE_INTERVAL must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}

// Offline reports whether no database is configured.
func (c *Config) Offline() bool {
	return c.Database.URL == ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
