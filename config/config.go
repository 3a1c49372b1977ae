package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	Headless      bool
	ChromeBin     string
	NavTimeoutSec int

	// Scroll-loader tuning.
	ScrollSettleMinMs   int
	ScrollSettleMaxMs   int
	ScrollMaxNoChange   int
	ScrollMaxIters      int
	ScrollFallbackTries int

	// Contact-enrichment secondary fetch.
	WebsiteTimeoutSec int

	MaxRetries     int
	MaxConcurrency int

	ServerPort        int
	WebhookTimeoutSec int

	CSVOutputDir string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "leads_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		Headless:      getEnvBool("HEADLESS", true),
		ChromeBin:     getEnv("CHROME_BIN", ""),
		NavTimeoutSec: getEnvInt("NAV_TIMEOUT_SEC", 60),

		ScrollSettleMinMs:   getEnvInt("SCROLL_SETTLE_MIN_MS", 1500),
		ScrollSettleMaxMs:   getEnvInt("SCROLL_SETTLE_MAX_MS", 3000),
		ScrollMaxNoChange:   getEnvInt("SCROLL_MAX_NO_CHANGE", 3),
		ScrollMaxIters:      getEnvInt("SCROLL_MAX_ITERS", 50),
		ScrollFallbackTries: getEnvInt("SCROLL_FALLBACK_TRIES", 3),

		WebsiteTimeoutSec: getEnvInt("WEBSITE_TIMEOUT_SEC", 10),

		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),

		ServerPort:        getEnvInt("PORT", 8000),
		WebhookTimeoutSec: getEnvInt("WEBHOOK_TIMEOUT_SEC", 10),

		CSVOutputDir: getEnv("CSV_OUTPUT_DIR", "./output"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// NavTimeout returns the per-navigation timeout as a duration.
func (c *Config) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}

// WebsiteTimeout returns the secondary-fetch timeout as a duration.
func (c *Config) WebsiteTimeout() time.Duration {
	return time.Duration(c.WebsiteTimeoutSec) * time.Second
}

// WebhookTimeout returns the webhook POST timeout as a duration.
func (c *Config) WebhookTimeout() time.Duration {
	return time.Duration(c.WebhookTimeoutSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
