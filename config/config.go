package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Hard-coded model defaults. Overridable per provider/gear via options
// or environment (see New).
const (
	DefaultPrimaryBaseURL   = "https://api.groq.com/openai/v1"
	DefaultSecondaryBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai"

	DefaultPrimaryHighModel = "llama-3.3-70b-versatile"
	DefaultPrimaryLowModel  = "llama-3.1-8b-instant"
	DefaultSecondaryModel   = "gemini-2.0-flash"
)

// Config represents the complete gateway configuration.
type Config struct {
	Primary       PrimaryConfig
	Secondary     SecondaryConfig
	AutoRepair    AutoRepairConfig
	Observability ObservabilityConfig
}

// PrimaryConfig holds primary provider configuration. The primary
// provider serves two model tiers, selected at call time by the gear
// controller.
type PrimaryConfig struct {
	APIKey        string
	BaseURL       string
	HighGearModel string
	LowGearModel  string
	Timeout       time.Duration
}

// SecondaryConfig holds secondary provider configuration. The secondary
// provider serves a single model tier and all multimodal traffic.
type SecondaryConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// AutoRepairConfig holds configuration for the external self-repair
// collaborator. An empty Endpoint disables dispatch.
type AutoRepairConfig struct {
	Endpoint    string
	Timeout     time.Duration
	BufferSize  int
	WorkerCount int
}

// ObservabilityConfig holds logging configuration.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// Option overrides a configuration value resolved from the environment.
// Options take precedence over environment variables, which take
// precedence over the hard-coded defaults.
type Option func(*Config)

// WithPrimaryAPIKey sets the primary provider API key.
func WithPrimaryAPIKey(key string) Option {
	return func(c *Config) { c.Primary.APIKey = key }
}

// WithSecondaryAPIKey sets the secondary provider API key.
func WithSecondaryAPIKey(key string) Option {
	return func(c *Config) { c.Secondary.APIKey = key }
}

// WithPrimaryModels sets the high- and low-gear models for the primary
// provider.
func WithPrimaryModels(high, low string) Option {
	return func(c *Config) {
		c.Primary.HighGearModel = high
		c.Primary.LowGearModel = low
	}
}

// WithSecondaryModel sets the secondary provider model.
func WithSecondaryModel(model string) Option {
	return func(c *Config) { c.Secondary.Model = model }
}

// WithAutoRepairEndpoint sets the auto-repair collaborator endpoint.
func WithAutoRepairEndpoint(url string) Option {
	return func(c *Config) { c.AutoRepair.Endpoint = url }
}

// New creates a Config by loading .env (when present), then the
// environment, then hard-coded defaults, and finally applying options
// on top.
func New(opts ...Option) *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Primary: PrimaryConfig{
			APIKey:        getEnv("PRIMARY_API_KEY", ""),
			BaseURL:       getEnv("PRIMARY_BASE_URL", DefaultPrimaryBaseURL),
			HighGearModel: getEnv("PRIMARY_MODEL_HIGH", DefaultPrimaryHighModel),
			LowGearModel:  getEnv("PRIMARY_MODEL_LOW", DefaultPrimaryLowModel),
			Timeout:       getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
		},
		Secondary: SecondaryConfig{
			APIKey:  getEnv("SECONDARY_API_KEY", ""),
			BaseURL: getEnv("SECONDARY_BASE_URL", DefaultSecondaryBaseURL),
			Model:   getEnv("SECONDARY_MODEL", DefaultSecondaryModel),
			Timeout: getEnvAsDuration("PROVIDER_TIMEOUT", 60*time.Second),
		},
		AutoRepair: AutoRepairConfig{
			Endpoint:    getEnv("AUTOREPAIR_URL", ""),
			Timeout:     getEnvAsDuration("AUTOREPAIR_TIMEOUT", 10*time.Second),
			BufferSize:  getEnvAsInt("AUTOREPAIR_BUFFER_SIZE", 100),
			WorkerCount: getEnvAsInt("AUTOREPAIR_WORKERS", 2),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// PrimaryConfigured reports whether the primary provider has credentials.
func (c *Config) PrimaryConfigured() bool {
	return c.Primary.APIKey != ""
}

// SecondaryConfigured reports whether the secondary provider has credentials.
func (c *Config) SecondaryConfigured() bool {
	return c.Secondary.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
