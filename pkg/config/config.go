package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the Steam catalog collector
type Config struct {
	// Steam storefront access
	Steam SteamConfig `yaml:"steam" json:"steam"`

	// Database connection settings
	Database DatabaseConfig `yaml:"database" json:"database"`

	// Collection run settings
	Collector CollectorConfig `yaml:"collector" json:"collector"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SteamConfig holds Steam-specific configuration
type SteamConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key"`
	Region    string `yaml:"region" json:"region"`
	Language  string `yaml:"language" json:"language"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// DatabaseConfig holds Postgres connection configuration
type DatabaseConfig struct {
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Name     string `yaml:"name" json:"name"`
	SSLMode  string `yaml:"ssl_mode" json:"ssl_mode"`
}

// DSN builds a pgx-compatible connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// CollectorConfig holds collection run configuration
type CollectorConfig struct {
	MinReviews     int           `yaml:"min_reviews" json:"min_reviews"`
	MaxGames       int           `yaml:"max_games" json:"max_games"`
	CommitEvery    int           `yaml:"commit_every" json:"commit_every"`
	ProgressEvery  int           `yaml:"progress_every" json:"progress_every"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Mode selects the limiter implementation: "fixed" or "token_bucket"
	Mode              string        `yaml:"mode" json:"mode"`
	RequestDelay      time.Duration `yaml:"request_delay" json:"request_delay"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Steam: SteamConfig{
			Region:    "us",
			Language:  "english",
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "steam_games",
			SSLMode: "disable",
		},
		Collector: CollectorConfig{
			MinReviews:     1000,
			MaxGames:       100,
			CommitEvery:    10,
			ProgressEvery:  5000,
			RequestTimeout: 30 * time.Second,
			MaxRetries:     3,
		},
		RateLimit: RateLimitConfig{
			Mode:              "fixed",
			RequestDelay:      time.Second,
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("STEAM_API_KEY"); apiKey != "" {
		c.Steam.APIKey = apiKey
	}
	if region := os.Getenv("STEAMCOLLECT_REGION"); region != "" {
		c.Steam.Region = region
	}
	if lang := os.Getenv("STEAMCOLLECT_LANGUAGE"); lang != "" {
		c.Steam.Language = lang
	}
	if ua := os.Getenv("STEAMCOLLECT_USER_AGENT"); ua != "" {
		c.Steam.UserAgent = ua
	}

	if host := os.Getenv("DB_HOST"); host != "" {
		c.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		var val int
		fmt.Sscanf(port, "%d", &val)
		if val > 0 {
			c.Database.Port = val
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		c.Database.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		c.Database.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		c.Database.Name = name
	}
	if sslMode := os.Getenv("DB_SSLMODE"); sslMode != "" {
		c.Database.SSLMode = sslMode
	}

	if minReviews := os.Getenv("STEAMCOLLECT_MIN_REVIEWS"); minReviews != "" {
		var val int
		fmt.Sscanf(minReviews, "%d", &val)
		if val > 0 {
			c.Collector.MinReviews = val
		}
	}
	if maxGames := os.Getenv("STEAMCOLLECT_MAX_GAMES"); maxGames != "" {
		var val int
		fmt.Sscanf(maxGames, "%d", &val)
		if val > 0 {
			c.Collector.MaxGames = val
		}
	}

	if delay := os.Getenv("STEAMCOLLECT_REQUEST_DELAY"); delay != "" {
		if d, err := time.ParseDuration(delay); err == nil && d > 0 {
			c.RateLimit.RequestDelay = d
		}
	}

	if logLevel := os.Getenv("STEAMCOLLECT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".steamcollect.yaml",
		".steamcollect.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "steamcollect", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "steamcollect", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".steamcollect.yaml"),
		filepath.Join(os.Getenv("HOME"), ".steamcollect.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Database.Host == "" {
		errs = append(errs, errors.New("database host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database port must be between 1 and 65535"))
	}
	if c.Database.User == "" {
		errs = append(errs, errors.New("database user is required"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database name is required"))
	}

	if c.Collector.MinReviews < 0 {
		errs = append(errs, errors.New("minimum reviews cannot be negative"))
	}
	if c.Collector.MaxGames <= 0 {
		errs = append(errs, errors.New("max games must be positive"))
	}
	if c.Collector.CommitEvery <= 0 {
		errs = append(errs, errors.New("commit interval must be positive"))
	}
	if c.Collector.ProgressEvery <= 0 {
		errs = append(errs, errors.New("progress interval must be positive"))
	}
	if c.Collector.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Collector.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	switch strings.ToLower(c.RateLimit.Mode) {
	case "fixed":
		if c.RateLimit.RequestDelay <= 0 {
			errs = append(errs, errors.New("request delay must be positive"))
		}
	case "token_bucket":
		if c.RateLimit.RequestsPerMinute <= 0 {
			errs = append(errs, errors.New("requests per minute must be positive"))
		}
	default:
		errs = append(errs, errors.New("invalid rate limit mode"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if apiKey, ok := flags["api-key"].(string); ok && apiKey != "" {
		c.Steam.APIKey = apiKey
	}
	if minReviews, ok := flags["min-reviews"].(int); ok && minReviews > 0 {
		c.Collector.MinReviews = minReviews
	}
	if maxGames, ok := flags["max-games"].(int); ok && maxGames > 0 {
		c.Collector.MaxGames = maxGames
	}
	if delay, ok := flags["request-delay"].(time.Duration); ok && delay > 0 {
		c.RateLimit.RequestDelay = delay
	}
	if dbName, ok := flags["db-name"].(string); ok && dbName != "" {
		c.Database.Name = dbName
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".steamcollect.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
