package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/specharvest/pkg/errors"
)

const (
	// EngineChrome drives a real Chromium through chromedp
	EngineChrome = "chrome"
	// EngineHTTP fetches server-rendered HTML without running scripts
	EngineHTTP = "http"
)

// Config represents the application configuration
type Config struct {
	// Crawl target and budgets
	ListingURL    string
	OutputPath    string
	MaxPages      int
	ItemsPerPage  int // 0 = unbounded
	MaxTotalItems int // 0 = unbounded
	Headless      bool
	DelayMs       int
	LongFormat    bool

	// Browser engine
	Engine string

	// Optional YAML file extending the static mapping and key renames
	RulesFile string

	// File that receives one line per skipped document
	FailureLog string

	// Memcache configuration (empty address = in-process cache)
	MemcacheAddr   string
	RateLimitBlock time.Duration

	// Redis configuration (empty address = publishing disabled)
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	maxPages, _ := strconv.Atoi(getEnv("MAX_PAGES", "1"))
	itemsPerPage, _ := strconv.Atoi(getEnv("ITEMS_PER_PAGE", "0"))
	maxTotalItems, _ := strconv.Atoi(getEnv("MAX_TOTAL_ITEMS", "0"))
	delayMs, _ := strconv.Atoi(getEnv("DELAY_MS", "1000"))
	blockSeconds, _ := strconv.Atoi(getEnv("RATE_LIMIT_BLOCK_SECONDS", "60"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisStreamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	redisStreamMaxLength, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAX_LENGTH", "1000"))

	return &Config{
		ListingURL:           getEnv("LISTING_URL", ""),
		OutputPath:           getEnv("OUTPUT_PATH", "danawa_output.csv"),
		MaxPages:             maxPages,
		ItemsPerPage:         itemsPerPage,
		MaxTotalItems:        maxTotalItems,
		Headless:             getEnvBool("HEADLESS", false),
		DelayMs:              delayMs,
		LongFormat:           getEnvBool("LONG_FORMAT", false),
		Engine:               getEnv("ENGINE", EngineChrome),
		RulesFile:            getEnv("RULES_FILE", ""),
		FailureLog:           getEnv("FAILURE_LOG", "crawl_errors.log"),
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RateLimitBlock:       time.Duration(blockSeconds) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "specharvest"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		Environment:          getEnv("SPECHARVEST_ENVIRONMENT", "development"),
	}
}

// Validate checks that the configuration can drive a crawl
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListingURL) == "" {
		return errors.NewConfiguration("listing URL is required", nil)
	}
	u, err := url.Parse(c.ListingURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.NewConfiguration("listing URL must be absolute: "+c.ListingURL, err)
	}
	if c.MaxPages < 1 {
		return errors.NewConfiguration("max pages must be at least 1", nil)
	}
	if c.ItemsPerPage < 0 || c.MaxTotalItems < 0 {
		return errors.NewConfiguration("item budgets must not be negative", nil)
	}
	if c.DelayMs < 0 {
		return errors.NewConfiguration("delay must not be negative", nil)
	}
	if c.Engine != EngineChrome && c.Engine != EngineHTTP {
		return errors.NewConfiguration("unknown engine: "+c.Engine, nil)
	}
	if c.OutputPath == "" {
		return errors.NewConfiguration("output path is required", nil)
	}
	if c.RedisAddr != "" && c.RedisStreamCount < 1 {
		return errors.NewConfiguration("redis stream count must be at least 1", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
