package config

import (
	"math"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/core-coin/capwatch/internal/models"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int

	// Market data (Moralis) configuration
	MoralisAPIKey  string
	MoralisBaseURL string

	// Notification configuration
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIBase  string

	// Filter configuration
	MarketCapBounds models.CapBounds

	// Pipeline configuration
	HTTPTimeout         time.Duration
	MaxConcurrentEvents int
}

// LoadConfig loads the configuration from environment variables and validates it
func LoadConfig() (*Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return nil, err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ReadConfig reads the environment without validating, so callers can apply overrides first
func ReadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	minCap, err := getEnvAsOptionalFloat("MARKET_CAP_MIN")
	if err != nil {
		return nil, err
	}
	maxCap, err := getEnvAsOptionalFloat("MARKET_CAP_MAX")
	if err != nil {
		return nil, err
	}

	apiPort, err := getEnvAsInt("API_PORT", 3000)
	if err != nil {
		return nil, err
	}
	httpTimeout, err := getEnvAsDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	maxConcurrentEvents, err := getEnvAsInt("MAX_CONCURRENT_EVENTS", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Development:         getEnvAsBool("DEVELOPMENT", false),
		APIPort:             apiPort,
		MoralisAPIKey:       getEnv("MORALIS_API_KEY", ""),
		MoralisBaseURL:      getEnv("MORALIS_BASE_URL", "https://solana-gateway.moralis.io"),
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:      getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIBase:     getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		MarketCapBounds:     models.CapBounds{Min: minCap, Max: maxCap},
		HTTPTimeout:         httpTimeout,
		MaxConcurrentEvents: maxConcurrentEvents,
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.MoralisAPIKey == "" {
		return errors.New("MORALIS_API_KEY is required")
	}

	if c.MoralisBaseURL == "" {
		return errors.New("MORALIS_BASE_URL is required")
	}

	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	if c.TelegramChatID == "" {
		return errors.New("TELEGRAM_CHAT_ID is required")
	}

	if c.TelegramAPIBase == "" {
		return errors.New("TELEGRAM_API_BASE is required")
	}

	if b := c.MarketCapBounds; b.Min != nil && b.Max != nil && *b.Min > *b.Max {
		return errors.Errorf("MARKET_CAP_MIN (%v) must not exceed MARKET_CAP_MAX (%v)", *b.Min, *b.Max)
	}

	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}

	if c.MaxConcurrentEvents < 1 {
		return errors.New("MAX_CONCURRENT_EVENTS must be at least 1")
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns defaultValue when the variable is unset or empty.
func getEnvAsInt(name string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(name)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return value, nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	valueStr, exists := os.LookupEnv(name)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s", name)
	}
	return value, nil
}

// getEnvAsOptionalFloat returns nil when the variable is unset or empty.
// A bound that is set but unparsable is an error: silently dropping it would open the filter.
func getEnvAsOptionalFloat(name string) (*float64, error) {
	valueStr, exists := os.LookupEnv(name)
	if !exists || valueStr == "" {
		return nil, nil
	}
	value, err := ParseBound(valueStr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return value, nil
}

// ParseBound parses a USD market cap bound.
func ParseBound(s string) (*float64, error) {
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil, errors.Errorf("bound must be a finite number, got %q", s)
	}
	return &value, nil
}
