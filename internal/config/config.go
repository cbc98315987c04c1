package config

import (
	"fmt"
	"os"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config carries everything the binaries read from the environment.
// It is built once at process start and passed explicitly into
// constructors so components stay testable with injected fakes.
type Config struct {
	Provider     string
	OpenAIKey    string
	AnthropicKey string

	RedisURL    string
	DatabaseURL string

	Port        string
	FrontendURL string

	Country string
}

// Load reads the process environment into a Config. Callers are
// expected to have run godotenv.Load beforehand.
func Load() *Config {
	cfg := &Config{
		Provider:     os.Getenv("LLM_PROVIDER"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		RedisURL:     os.Getenv("REDIS_URL"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Port:         os.Getenv("PORT"),
		FrontendURL:  os.Getenv("FRONTEND_URL"),
		Country:      os.Getenv("COUNTRY"),
	}

	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Country == "" {
		cfg.Country = "Zimbabwe"
	}

	return cfg
}

// Validate fails fast on configuration problems so they are never
// mistaken for runtime model failures.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("config: OPENAI_API_KEY is not set")
		}
	case ProviderAnthropic:
		if c.AnthropicKey == "" {
			return fmt.Errorf("config: ANTHROPIC_API_KEY is not set")
		}
	default:
		return fmt.Errorf("config: unknown LLM_PROVIDER %q (valid: openai, anthropic)", c.Provider)
	}
	return nil
}
