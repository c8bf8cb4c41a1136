package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/loan-offers/constants"
	"github.com/joseph-ayodele/loan-offers/internal/offers"
)

// Config holds all application configuration
type Config struct {
	Scrape   ScrapeConfig
	Browser  BrowserConfig
	Database DatabaseConfig
	Cache    CacheConfig
	SMTP     SMTPConfig
	Server   ServerConfig
	Worker   WorkerConfig
	Log      LogConfig
	Output   OutputConfig
}

// ScrapeConfig holds the source page and extraction tuning
type ScrapeConfig struct {
	URL         string
	CatalogFile string
	WindowLines int
	SkipLines   int
	Interval    time.Duration
	WatchDir    string
}

// BrowserConfig holds page rendering configuration
type BrowserConfig struct {
	Mode         string
	ChromeBin    string
	ControlURL   string
	Headless     bool
	NoSandbox    bool
	NavTimeout   time.Duration
	ExpandPasses int
	ExpandDelay  time.Duration
	SettleDelay  time.Duration
	UserAgent    string
	HTTPTimeout  time.Duration
	HTTPRetries  int
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// WorkerConfig holds queue sizing for the daemon
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// OutputConfig holds artifact output configuration
type OutputConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Scrape: ScrapeConfig{
			URL:         getEnv("SCRAPE_URL", constants.DefaultScrapeURL),
			CatalogFile: getEnv("CATALOG_FILE", ""),
			WindowLines: getEnvAsInt("WINDOW_LINES", 25),
			SkipLines:   getEnvAsInt("SKIP_LINES", 10),
			Interval:    getEnvAsDuration("SCRAPE_INTERVAL", 6*time.Hour),
			WatchDir:    getEnv("WATCH_DIR", ""),
		},
		Browser: BrowserConfig{
			Mode:         strings.ToLower(getEnv("RENDER_MODE", "browser")),
			ChromeBin:    getEnv("CHROME_BIN", ""),
			ControlURL:   getEnv("CHROME_CONTROL_URL", ""),
			Headless:     getEnvAsBool("BROWSER_HEADLESS", true),
			NoSandbox:    getEnvAsBool("BROWSER_NO_SANDBOX", true),
			NavTimeout:   getEnvAsDuration("NAV_TIMEOUT", 120*time.Second),
			ExpandPasses: getEnvAsInt("EXPAND_PASSES", 3),
			ExpandDelay:  getEnvAsDuration("EXPAND_DELAY", time.Second),
			SettleDelay:  getEnvAsDuration("SETTLE_DELAY", time.Second),
			UserAgent:    getEnv("HTTP_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) loan-offers"),
			HTTPTimeout:  getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),
			HTTPRetries:  getEnvAsInt("HTTP_RETRIES", 2),
		},
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Cache: CacheConfig{
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			SnapshotTTL:   getEnvAsDuration("SNAPSHOT_TTL", time.Hour),
		},
		SMTP: SMTPConfig{
			Server:   getEnv("SMTP_SERVER", ""),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", ""),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("WORKERS", 2),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 16),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 3*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
			File:   getEnv("LOG_FILE", ""),
		},
		Output: OutputConfig{
			Dir: getEnv("OUTPUT_DIR", "./output"),
		},
	}
}

// ExtractorOptions maps the scrape settings onto engine options. SKIP_LINES=0
// disables skip-ahead.
func (s ScrapeConfig) ExtractorOptions() offers.Options {
	opts := offers.Options{WindowLines: s.WindowLines, SkipLines: s.SkipLines}
	if s.SkipLines == 0 {
		opts.SkipLines = offers.NoSkip
	}
	return opts
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the settings every entry point needs.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scrape.URL) == "" {
		return NewAppError("CONFIG_ERROR", "SCRAPE_URL is required", ErrInvalidInput)
	}
	if c.Scrape.WindowLines <= 0 {
		return NewAppError("CONFIG_ERROR", "WINDOW_LINES must be positive", ErrInvalidInput)
	}
	if c.Scrape.SkipLines < 0 {
		return NewAppError("CONFIG_ERROR", "SKIP_LINES must not be negative", ErrInvalidInput)
	}
	switch c.Browser.Mode {
	case "browser", "http":
	default:
		return NewAppError("CONFIG_ERROR", "RENDER_MODE must be browser or http", ErrInvalidInput)
	}
	if c.Browser.ExpandPasses < 0 {
		return NewAppError("CONFIG_ERROR", "EXPAND_PASSES must not be negative", ErrInvalidInput)
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", "DB_DRIVER must be postgres or sqlite", ErrInvalidInput)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return NewAppError("CONFIG_ERROR", "LOG_FORMAT must be text or json", ErrInvalidInput)
	}
	return nil
}

// ValidateDaemon adds the checks the long-running service needs on top of Validate.
func (c *Config) ValidateDaemon() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Worker.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// ValidateSMTP checks that mail can be sent.
func (c *Config) ValidateSMTP() error {
	if c.SMTP.Server == "" {
		return NewAppError("CONFIG_ERROR", "SMTP_SERVER is required", ErrInvalidInput)
	}
	if c.SMTP.From == "" {
		return NewAppError("CONFIG_ERROR", "SMTP_FROM is required", ErrInvalidInput)
	}
	return nil
}
