package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server (viewer API)
	Port   string
	Env    string // development, staging, production, test
	Server ServerConfig

	// Exchange-local time zone used for run dates and the weekend policy
	Timezone string

	// Pipeline
	Pipeline PipelineConfig

	// Database (optional snapshot archive)
	Database DatabaseConfig

	// Redis (optional shared rate limiter / viewer cache)
	Redis RedisConfig

	// Scheduler
	Schedule ScheduleConfig

	// Viewer
	Viewer ViewerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// PipelineConfig holds the knobs of the daily snapshot pipeline.
// Every component receives the values it needs at construction time.
type PipelineConfig struct {
	// Universe
	Markets   []string // requested segment identifiers (Prime, Standard, Growth)
	MasterURL string   // JPX listed-issues master list (xls, csv, or the statistics page)

	// Quote batching
	BatchSize         int
	Lookback          string // provider range string, e.g. "5d"
	Sleep             time.Duration
	BackoffMultiplier float64
	QuoteBaseURL      string
	RequestsPerSecond float64
	FetchWorkers      int
	HTTPMaxRetries    int

	// Output
	OutputDir    string
	OutputPrefix string
	WriteParquet bool

	// Policy
	SkipWeekend bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether the snapshot archive should be used.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds viewer API timeouts
type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration // also bounds the wait for a triggered pipeline run
}

// ScheduleConfig holds the cron expression of the daily job (with seconds)
// and the limit of one scheduled run.
type ScheduleConfig struct {
	Cron       string
	JobTimeout time.Duration // 0 = no limit
}

// ViewerConfig holds viewer settings
type ViewerConfig struct {
	PresetsFile string // optional YAML file overriding the built-in sort presets
	DefaultTopN int
	CacheTTL    time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Server: ServerConfig{
			ReadTimeout:     getEnvAsDuration("API_READ_TIMEOUT", "15s"),
			WriteTimeout:    getEnvAsDuration("API_WRITE_TIMEOUT", "30s"),
			ShutdownTimeout: getEnvAsDuration("API_SHUTDOWN_TIMEOUT", "30s"),
		},

		Timezone: getEnv("TZ_EXCHANGE", "Asia/Tokyo"),

		Pipeline: PipelineConfig{
			Markets:           getEnvAsList("MARKETS", []string{"Prime", "Standard", "Growth"}),
			MasterURL:         getEnv("JPX_MASTER_URL", "https://www.jpx.co.jp/markets/statistics-equities/misc/tvdivq0000001vg2-att/data_j.xls"),
			BatchSize:         getEnvAsInt("BATCH_SIZE", 100),
			Lookback:          getEnv("LOOKBACK", "5d"),
			Sleep:             getEnvAsDuration("BATCH_SLEEP", "1s"),
			BackoffMultiplier: getEnvAsFloat("BACKOFF_MULTIPLIER", 2),
			QuoteBaseURL:      getEnv("QUOTE_BASE_URL", "https://query1.finance.yahoo.com"),
			RequestsPerSecond: getEnvAsFloat("QUOTE_RPS", 20),
			FetchWorkers:      getEnvAsInt("FETCH_WORKERS", 8),
			HTTPMaxRetries:    getEnvAsInt("HTTP_MAX_RETRIES", 2),
			OutputDir:         getEnv("OUTPUT_DIR", "output"),
			OutputPrefix:      getEnv("OUTPUT_PREFIX", "tse_daily"),
			WriteParquet:      getEnvAsBool("WRITE_PARQUET", false),
			SkipWeekend:       getEnvAsBool("SKIP_WEEKEND", true),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 4),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Schedule: ScheduleConfig{
			Cron:       getEnv("SCHEDULE_CRON", "0 30 16 * * 1-5"),
			JobTimeout: getEnvAsDuration("SCHEDULE_JOB_TIMEOUT", "2h"),
		},

		Viewer: ViewerConfig{
			PresetsFile: getEnv("VIEWER_PRESETS_FILE", ""),
			DefaultTopN: getEnvAsInt("VIEWER_TOP_N", 30),
			CacheTTL:    getEnvAsDuration("VIEWER_CACHE_TTL", "10m"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Location returns the exchange time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENV must be one of: development, staging, production, test")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TZ_EXCHANGE %q: %w", c.Timezone, err)
	}

	p := c.Pipeline
	if p.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be positive, got %d", p.BatchSize)
	}
	if p.Sleep < 0 {
		return fmt.Errorf("BATCH_SLEEP must not be negative")
	}
	// 실패 후 대기는 배치 간 대기보다 길어야 함
	if p.BackoffMultiplier <= 1 {
		return fmt.Errorf("BACKOFF_MULTIPLIER must be > 1, got %v", p.BackoffMultiplier)
	}
	if p.Lookback == "" {
		return fmt.Errorf("LOOKBACK is required")
	}
	if p.MasterURL == "" {
		return fmt.Errorf("JPX_MASTER_URL is required")
	}
	if p.OutputPrefix == "" {
		return fmt.Errorf("OUTPUT_PREFIX is required")
	}
	if c.Schedule.JobTimeout < 0 {
		return fmt.Errorf("SCHEDULE_JOB_TIMEOUT must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
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
		return defaultValue
	}

	return value
}

// getEnvAsBool accepts the usual boolean spellings plus yes/no and on/off
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}

	switch strings.ToLower(valueStr) {
	case "yes", "y", "on":
		return true
	case "no", "n", "off":
		return false
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
