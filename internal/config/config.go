package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// NewsAPI settings
	NewsAPIKey       string
	NewsAPIBaseURL   string
	DefaultCountry   string
	PageSize         int
	ResponseCacheTTL time.Duration

	// HTTP server
	HTTPAddr string
	SiteURL  string

	// AI settings
	AIProvider      string // gemini | openai | none
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	OpenAIBaseURL   string
	MaxAIRequests   int    // per day, 0 = unlimited
	KeywordFallback string // frequency | title

	// AI result store
	StoreDriver     string // memory | file | bolt | postgres | sqlite
	StoreDSN        string
	AICacheTTLHours int // 0 = never expire
	PruneSchedule   string

	// Scraper settings
	ScrapeFullContent bool

	// Catalog of categories, countries and sources
	CatalogPath string
	Catalog     *Catalog

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Load reads .env (if present), the environment and the catalog file.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		NewsAPIKey:        os.Getenv("NEWS_API_KEY"),
		NewsAPIBaseURL:    getEnvOrDefault("NEWS_API_BASE_URL", "https://newsapi.org/v2"),
		DefaultCountry:    getEnvOrDefault("DEFAULT_COUNTRY", "us"),
		PageSize:          getEnvIntOrDefault("PAGE_SIZE", 12),
		ResponseCacheTTL:  getEnvDurationOrDefault("RESPONSE_CACHE_TTL", time.Hour),
		HTTPAddr:          getEnvOrDefault("HTTP_ADDR", ":8080"),
		SiteURL:           getEnvOrDefault("SITE_URL", "http://localhost:8080"),
		AIProvider:        strings.ToLower(getEnvOrDefault("AI_PROVIDER", "gemini")),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		MaxAIRequests:     getEnvIntOrDefault("MAX_AI_REQUESTS", 0),
		KeywordFallback:   strings.ToLower(getEnvOrDefault("KEYWORD_FALLBACK", "frequency")),
		StoreDriver:       strings.ToLower(getEnvOrDefault("STORE_DRIVER", "memory")),
		StoreDSN:          os.Getenv("STORE_DSN"),
		AICacheTTLHours:   getEnvIntOrDefault("AI_CACHE_TTL_HOURS", 24),
		PruneSchedule:     getEnvOrDefault("PRUNE_SCHEDULE", "@hourly"),
		ScrapeFullContent: os.Getenv("SCRAPE_FULL_CONTENT") == "true",
		CatalogPath:       getEnvOrDefault("CATALOG_PATH", "configs/catalog.yaml"),
		Debug:             os.Getenv("DEBUG") == "true",
		RequestTimeout:    getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
		RetryAttempts:     getEnvIntOrDefault("RETRY_ATTEMPTS", 3),
		RetryDelay:        getEnvDurationOrDefault("RETRY_DELAY", 500*time.Millisecond),
	}

	catalog, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	cfg.Catalog = catalog

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue >= 0 {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("90s") or plain seconds ("3600").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func (c *Config) Validate() error {
	switch c.AIProvider {
	case "gemini", "openai", "none":
	default:
		return fmt.Errorf("AI_PROVIDER must be 'gemini', 'openai' or 'none'")
	}
	switch c.KeywordFallback {
	case "frequency", "title":
	default:
		return fmt.Errorf("KEYWORD_FALLBACK must be 'frequency' or 'title'")
	}
	switch c.StoreDriver {
	case "memory":
	case "file", "bolt", "postgres", "sqlite":
		if c.StoreDSN == "" {
			return fmt.Errorf("STORE_DSN is required for STORE_DRIVER=%s", c.StoreDriver)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, file, bolt, postgres, sqlite")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 100")
	}
	if c.AICacheTTLHours < 0 {
		return fmt.Errorf("AI_CACHE_TTL_HOURS must not be negative")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}
	return nil
}

// RequireNewsAPI is checked by commands that talk to NewsAPI.
func (c *Config) RequireNewsAPI() error {
	if c.NewsAPIKey == "" {
		return fmt.Errorf("NEWS_API_KEY is required")
	}
	return nil
}

// AIConfigured reports whether the selected model provider has a key.
func (c *Config) AIConfigured() bool {
	switch c.AIProvider {
	case "gemini":
		return c.GeminiAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	}
	return false
}

func (c *Config) AICacheTTL() time.Duration {
	return time.Duration(c.AICacheTTLHours) * time.Hour
}
