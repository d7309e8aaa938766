package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brojonat/suiscope/service/translate"
	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables. Collaborators receive the pieces they need at construction.
type Config struct {
	// Server configuration
	ServerAddr  string
	MetricsAddr string
	LogLevel    string

	// Sui RPC configuration
	SuiRPCURL      string
	SuiNetwork     string
	RPCMaxAttempts int
	RPCRetryDelay  time.Duration

	// Secondary indexer (optional)
	IndexerURL    string
	IndexerAPIKey string

	// LLM explanations (optional)
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	// Translation
	SUIPriceUSD   float64
	BuySellPolicy translate.BuySellPolicy

	// Raw transaction archive (optional)
	DatabaseURL string

	// Translation cache (optional)
	RedisURL string
	CacheTTL time.Duration

	// NATS configuration (optional)
	NATSURL string

	// Temporal configuration
	TemporalHost      string
	TemporalNamespace string
	TemporalTaskQueue string
}

// Load reads configuration from the environment, after loading a .env file
// if one exists, and validates it. All problems are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []error

	cfg.ServerAddr = getEnvOrDefault("SERVER_ADDR", ":8080")
	cfg.MetricsAddr = getEnvOrDefault("METRICS_ADDR", ":9091")
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.SuiRPCURL = getEnvOrDefault("SUI_RPC_URL", "https://fullnode.mainnet.sui.io:443")
	cfg.SuiNetwork = getEnvOrDefault("SUI_NETWORK", "mainnet")

	attempts, err := parseInt("RPC_MAX_ATTEMPTS", 3)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.RPCMaxAttempts = attempts
	}

	retryDelay, err := parseDuration("RPC_RETRY_DELAY", "500ms")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.RPCRetryDelay = retryDelay
	}

	cfg.IndexerURL = os.Getenv("INDEXER_URL")
	cfg.IndexerAPIKey = os.Getenv("INDEXER_API_KEY")

	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMBaseURL = getEnvOrDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	cfg.LLMModel = getEnvOrDefault("LLM_MODEL", "gpt-4o-mini")
	llmTimeout, err := parseDuration("LLM_TIMEOUT", "30s")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.LLMTimeout = llmTimeout
	}

	price, err := parseFloat("SUI_PRICE_USD", translate.DefaultSUIPriceUSD)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.SUIPriceUSD = price
	}

	policy, err := translate.ParseBuySellPolicy(os.Getenv("BUY_SELL_POLICY"))
	if err != nil {
		errs = append(errs, fmt.Errorf("BUY_SELL_POLICY: %w", err))
	} else {
		cfg.BuySellPolicy = policy
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.RedisURL = os.Getenv("REDIS_URL")
	ttl, err := parseDuration("CACHE_TTL", "1h")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.CacheTTL = ttl
	}

	cfg.NATSURL = os.Getenv("NATS_URL")

	cfg.TemporalHost = getEnvOrDefault("TEMPORAL_HOST", "localhost:7233")
	cfg.TemporalNamespace = getEnvOrDefault("TEMPORAL_NAMESPACE", "default")
	cfg.TemporalTaskQueue = getEnvOrDefault("TEMPORAL_TASK_QUEUE", "suiscope-explain")

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %v", errs)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is like Load but panics if configuration is invalid.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// Validate checks semantic constraints. Useful for testing configuration
// without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.SuiRPCURL == "" {
		errs = append(errs, fmt.Errorf("SuiRPCURL is required"))
	} else if !strings.HasPrefix(c.SuiRPCURL, "http://") && !strings.HasPrefix(c.SuiRPCURL, "https://") {
		errs = append(errs, fmt.Errorf("SuiRPCURL must be an http(s) URL, got %q", c.SuiRPCURL))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("LogLevel must be one of debug, info, warn, error; got %q", c.LogLevel))
	}

	if c.RPCMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("RPCMaxAttempts must be at least 1"))
	}

	if c.SUIPriceUSD <= 0 {
		errs = append(errs, fmt.Errorf("SUIPriceUSD must be positive"))
	}

	if c.LLMAPIKey != "" && c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("LLMTimeout must be positive when LLM is enabled"))
	}

	if c.RedisURL != "" && c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CacheTTL must be positive when the cache is enabled"))
	}

	if c.TemporalHost == "" {
		errs = append(errs, fmt.Errorf("TemporalHost is required"))
	}
	if c.TemporalNamespace == "" {
		errs = append(errs, fmt.Errorf("TemporalNamespace is required"))
	}
	if c.TemporalTaskQueue == "" {
		errs = append(errs, fmt.Errorf("TemporalTaskQueue is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}
	return nil
}

// LLMEnabled reports whether LLM explanations are configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}

func parseFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q: %w", key, value, err)
	}
	return result, nil
}
