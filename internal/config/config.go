package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Catalog sources
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Fallback modes used when a message carries no recognizable search slot
const (
	FallbackStatic   = "static"
	FallbackGenerate = "generate"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	PostgreSQL PostgreSQLConfig `yaml:"postgresql"`
	Search     SearchConfig     `yaml:"search"`
	Assistant  AssistantConfig  `yaml:"assistant"`
	Logging    LoggingConfig    `yaml:"logging"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int    `yaml:"port"`
	Host           string `yaml:"host"`
	GinMode        string `yaml:"gin_mode"`
	AllowedOrigins string `yaml:"allowed_origins"`
	TemplatesDir   string `yaml:"templates_dir"`    // chat page templates, read from disk in development builds
	ListingBaseURL string `yaml:"listing_base_url"` // listing aliases are appended to it; empty shows the alias as text
	MaxSessions    int    `yaml:"max_sessions"`     // least recently used sessions are dropped past this
}

// CatalogConfig selects where listings are loaded from
type CatalogConfig struct {
	Source  string `yaml:"source"` // csv or postgres
	CSVPath string `yaml:"csv_path"`
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string `yaml:"dsn"` // full connection string, takes precedence
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Database           string `yaml:"database"`
	SSLMode            string `yaml:"sslmode"`
	MaxConnections     int    `yaml:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections"`
}

// SearchConfig holds display caps for results
type SearchConfig struct {
	DisplayLimit  int `yaml:"display_limit"`  // rows shown on an exact match
	FallbackLimit int `yaml:"fallback_limit"` // rows shown for similar options
	MaxLimit      int `yaml:"max_limit"`
}

// AssistantConfig holds chat behaviour settings
type AssistantConfig struct {
	FallbackMode       string   `yaml:"fallback_mode"` // static or generate
	WorkingLanguage    string   `yaml:"working_language"`
	TranslateLanguages []string `yaml:"translate_languages"`
	Greeting           string   `yaml:"greeting"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// OpenAIConfig holds OpenAI-compatible API configuration
type OpenAIConfig struct {
	APIKey          string  `yaml:"api_key"`
	APIBase         string  `yaml:"api_base"`
	ChatModel       string  `yaml:"chat_model"`
	ChatTemperature float64 `yaml:"chat_temperature"`
	ChatMaxTokens   int     `yaml:"chat_max_tokens"`
	Timeout         int     `yaml:"timeout"` // seconds
	Enabled         bool    `yaml:"-"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			Host:           "0.0.0.0",
			GinMode:        "release",
			AllowedOrigins: "*",
			TemplatesDir:   "cmd/server/web/templates",
			MaxSessions:    10000,
		},
		Catalog: CatalogConfig{
			Source:  SourceCSV,
			CSVPath: "PROPERTY_ITEM.csv",
		},
		PostgreSQL: PostgreSQLConfig{
			Host:               "localhost",
			Port:               5432,
			User:               "postgres",
			Database:           "chatimmo",
			SSLMode:            "disable",
			MaxConnections:     10,
			MaxIdleConnections: 2,
		},
		Search: SearchConfig{
			DisplayLimit:  5,
			FallbackLimit: 3,
			MaxLimit:      50,
		},
		Assistant: AssistantConfig{
			FallbackMode:       FallbackStatic,
			WorkingLanguage:    "en",
			TranslateLanguages: []string{"fr"},
			Greeting:           "I'm here to help you find properties!",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		OpenAI: OpenAIConfig{
			APIBase:         "https://api.openai.com/v1",
			ChatModel:       "gpt-4o-mini",
			ChatTemperature: 0.7,
			ChatMaxTokens:   256,
			Timeout:         30,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.OpenAI.Enabled = cfg.OpenAI.APIKey != ""

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	c.Server.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.TemplatesDir = getEnv("SERVER_TEMPLATES_DIR", c.Server.TemplatesDir)
	c.Server.ListingBaseURL = getEnv("LISTING_BASE_URL", c.Server.ListingBaseURL)
	c.Server.MaxSessions = getEnvAsInt("MAX_SESSIONS", c.Server.MaxSessions)

	c.Catalog.Source = getEnv("CATALOG_SOURCE", c.Catalog.Source)
	c.Catalog.CSVPath = getEnv("CATALOG_CSV_PATH", c.Catalog.CSVPath)

	c.PostgreSQL.DSN = getEnv("DATABASE_URL", getEnv("PG_DSN", c.PostgreSQL.DSN))
	c.PostgreSQL.Host = getEnv("PG_HOST", c.PostgreSQL.Host)
	c.PostgreSQL.Port = getEnvAsInt("PG_PORT", c.PostgreSQL.Port)
	c.PostgreSQL.User = getEnv("PG_USER", c.PostgreSQL.User)
	c.PostgreSQL.Password = getEnv("PG_PASSWORD", c.PostgreSQL.Password)
	c.PostgreSQL.Database = getEnv("PG_DATABASE", c.PostgreSQL.Database)
	c.PostgreSQL.SSLMode = getEnv("PG_SSLMODE", c.PostgreSQL.SSLMode)
	c.PostgreSQL.MaxConnections = getEnvAsInt("PG_MAX_CONNECTIONS", c.PostgreSQL.MaxConnections)
	c.PostgreSQL.MaxIdleConnections = getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", c.PostgreSQL.MaxIdleConnections)

	c.Search.DisplayLimit = getEnvAsInt("SEARCH_DISPLAY_LIMIT", c.Search.DisplayLimit)
	c.Search.FallbackLimit = getEnvAsInt("SEARCH_FALLBACK_LIMIT", c.Search.FallbackLimit)
	c.Search.MaxLimit = getEnvAsInt("SEARCH_MAX_LIMIT", c.Search.MaxLimit)

	c.Assistant.FallbackMode = getEnv("ASSISTANT_FALLBACK_MODE", c.Assistant.FallbackMode)
	c.Assistant.WorkingLanguage = getEnv("ASSISTANT_WORKING_LANGUAGE", c.Assistant.WorkingLanguage)
	c.Assistant.TranslateLanguages = getEnvAsList("ASSISTANT_TRANSLATE_LANGUAGES", c.Assistant.TranslateLanguages)
	c.Assistant.Greeting = getEnv("ASSISTANT_GREETING", c.Assistant.Greeting)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)

	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.APIBase = getEnv("OPENAI_API_BASE", c.OpenAI.APIBase)
	c.OpenAI.ChatModel = getEnv("OPENAI_CHAT_MODEL", c.OpenAI.ChatModel)
	c.OpenAI.ChatTemperature = getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", c.OpenAI.ChatTemperature)
	c.OpenAI.ChatMaxTokens = getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", c.OpenAI.ChatMaxTokens)
	c.OpenAI.Timeout = getEnvAsInt("OPENAI_TIMEOUT", c.OpenAI.Timeout)
}

// Validate rejects settings the application cannot run with
func (c *Config) Validate() error {
	var errs []error

	switch c.Catalog.Source {
	case SourceCSV:
		if c.Catalog.CSVPath == "" {
			errs = append(errs, errors.New("catalog.csv_path is required for the csv source"))
		}
	case SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown catalog source %q (want %s or %s)", c.Catalog.Source, SourceCSV, SourcePostgres))
	}

	switch c.Server.GinMode {
	case "", gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("unknown gin mode %q (want %s, %s or %s)", c.Server.GinMode, gin.DebugMode, gin.ReleaseMode, gin.TestMode))
	}

	if c.Server.MaxSessions <= 0 {
		errs = append(errs, fmt.Errorf("server.max_sessions must be positive, got %d", c.Server.MaxSessions))
	}

	if c.Server.ListingBaseURL != "" {
		u, err := url.Parse(c.Server.ListingBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("server.listing_base_url %q must be an absolute http(s) URL", c.Server.ListingBaseURL))
		}
	}

	switch c.Assistant.FallbackMode {
	case FallbackStatic, FallbackGenerate:
	default:
		errs = append(errs, fmt.Errorf("unknown fallback mode %q (want %s or %s)", c.Assistant.FallbackMode, FallbackStatic, FallbackGenerate))
	}

	if c.Search.DisplayLimit <= 0 || c.Search.FallbackLimit <= 0 || c.Search.MaxLimit <= 0 {
		errs = append(errs, errors.New("search limits must be positive"))
	}
	if c.Assistant.WorkingLanguage == "" {
		errs = append(errs, errors.New("assistant.working_language is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Warn().Str("key", key).Int("default", defaultValue).Msg("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Warn().Str("key", key).Float64("default", defaultValue).Msg("Invalid float value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
