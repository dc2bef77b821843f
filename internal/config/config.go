// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Summarizer strategy names accepted by SUMMARIZER.
const (
	SummarizerExtractive = "extractive"
	SummarizerGemini     = "gemini"
	SummarizerOpenAI     = "openai"
)

type Config struct {
	// Slack settings
	SlackWebhookURL string

	// Quality settings
	MinTrustScore          int // 1..10
	MaxArticlesPerCategory int // >= 0

	// Summarizer settings
	SummarizerStrategy string
	GeminiAPIKey       string
	OpenAIAPIKey       string
	LLMMaxRequests     int // per run, 0 = unlimited

	// Feed settings
	FeedsConfigPath    string
	KeywordsConfigPath string
	FetchHoursBack     int

	// HTTP settings
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration

	// Delivered-articles cache
	CacheFilePath string
	CacheTTLHours int
}

// Load reads the configuration from environment variables and validates
// it. A missing SLACK_WEBHOOK_URL is a fatal startup error; everything
// else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		MinTrustScore:          5,
		MaxArticlesPerCategory: 10,
		SummarizerStrategy:     SummarizerExtractive,
		LLMMaxRequests:         50,
		FeedsConfigPath:        "configs/feeds.yaml",
		KeywordsConfigPath:     "configs/keywords.yaml",
		FetchHoursBack:         24,
		RequestTimeout:         30 * time.Second,
		RetryAttempts:          3,
		RetryDelay:             2 * time.Second,
		CacheFilePath:          "delivered_articles.json",
		CacheTTLHours:          48,
	}

	cfg.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	if v := os.Getenv("SUMMARIZER"); v != "" {
		cfg.SummarizerStrategy = v
	}
	cfg.MinTrustScore = getEnvIntOrDefault("MIN_TRUST_SCORE", cfg.MinTrustScore)
	cfg.MaxArticlesPerCategory = getEnvIntOrDefault("MAX_ARTICLES_PER_CATEGORY", cfg.MaxArticlesPerCategory)
	cfg.LLMMaxRequests = getEnvIntOrDefault("LLM_MAX_REQUESTS", cfg.LLMMaxRequests)
	cfg.FetchHoursBack = getEnvIntOrDefault("FETCH_HOURS_BACK", cfg.FetchHoursBack)
	cfg.CacheTTLHours = getEnvIntOrDefault("CACHE_TTL_HOURS", cfg.CacheTTLHours)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG", cfg.FeedsConfigPath)
	cfg.KeywordsConfigPath = getEnvOrDefault("KEYWORDS_CONFIG", cfg.KeywordsConfigPath)
	cfg.CacheFilePath = getEnvOrDefault("CACHE_FILE_PATH", cfg.CacheFilePath)

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			cfg.RequestTimeout = time.Duration(s) * time.Second
		}
	}

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
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SlackWebhookURL == "" {
		return fmt.Errorf("SLACK_WEBHOOK_URL is required")
	}
	if c.MinTrustScore < 1 || c.MinTrustScore > 10 {
		return fmt.Errorf("MIN_TRUST_SCORE must be between 1 and 10, got %d", c.MinTrustScore)
	}
	if c.MaxArticlesPerCategory < 0 {
		return fmt.Errorf("MAX_ARTICLES_PER_CATEGORY must be >= 0, got %d", c.MaxArticlesPerCategory)
	}
	switch c.SummarizerStrategy {
	case SummarizerExtractive:
	case SummarizerGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("SUMMARIZER=gemini requires GEMINI_API_KEY")
		}
	case SummarizerOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("SUMMARIZER=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("SUMMARIZER must be one of extractive, gemini, openai; got %q", c.SummarizerStrategy)
	}
	return nil
}
