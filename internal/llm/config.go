package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures a provider.
type Config struct {
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenAIConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// OpenAIConfig also serves OpenRouter and other OpenAI compatible
// endpoints through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// DefaultConfig uses the small model of each provider; bank generation does
// not need more.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderAnthropic,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenAIConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 2 * time.Minute,
	}
}

// envVars maps TIMEDQUIZ_* variables onto config fields.
func envVars(cfg *Config) map[string]*string {
	return map[string]*string{
		"TIMEDQUIZ_LLM_PROVIDER":       &cfg.Provider,
		"TIMEDQUIZ_ANTHROPIC_API_KEY":  &cfg.Anthropic.APIKey,
		"TIMEDQUIZ_ANTHROPIC_MODEL":    &cfg.Anthropic.Model,
		"TIMEDQUIZ_OPENAI_API_KEY":     &cfg.OpenAI.APIKey,
		"TIMEDQUIZ_OPENAI_MODEL":       &cfg.OpenAI.Model,
		"TIMEDQUIZ_OPENAI_BASE_URL":    &cfg.OpenAI.BaseURL,
		"TIMEDQUIZ_GEMINI_API_KEY":     &cfg.Gemini.APIKey,
		"TIMEDQUIZ_GEMINI_MODEL":       &cfg.Gemini.Model,
		"TIMEDQUIZ_OPENROUTER_API_KEY": &cfg.OpenRouter.APIKey,
		"TIMEDQUIZ_OPENROUTER_MODEL":   &cfg.OpenRouter.Model,
	}
}

// ConfigFromEnv overlays TIMEDQUIZ_* variables on DefaultConfig. When no
// provider was chosen explicitly and its key is missing, the vendor
// variables (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY,
// OPENROUTER_API_KEY) are probed in that order.
func ConfigFromEnv() Config {
	return configFromEnv(os.Getenv)
}

func configFromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()
	for name, field := range envVars(&cfg) {
		if v := getenv(name); v != "" {
			*field = v
		}
	}
	if getenv("TIMEDQUIZ_LLM_PROVIDER") != "" || cfg.Validate() == nil {
		return cfg
	}

	vendor := []struct {
		env, provider string
		key           *string
	}{
		{"GEMINI_API_KEY", ProviderGemini, &cfg.Gemini.APIKey},
		{"OPENAI_API_KEY", ProviderOpenAI, &cfg.OpenAI.APIKey},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &cfg.Anthropic.APIKey},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &cfg.OpenRouter.APIKey},
	}
	for _, v := range vendor {
		if k := getenv(v.env); k != "" {
			cfg.Provider = v.provider
			*v.key = k
			break
		}
	}
	return cfg
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case ProviderAnthropic:
		key, env = c.Anthropic.APIKey, "TIMEDQUIZ_ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		key, env = c.OpenAI.APIKey, "TIMEDQUIZ_OPENAI_API_KEY"
	case ProviderGemini:
		key, env = c.Gemini.APIKey, "TIMEDQUIZ_GEMINI_API_KEY"
	case ProviderOpenRouter:
		key, env = c.OpenRouter.APIKey, "TIMEDQUIZ_OPENROUTER_API_KEY"
	case ProviderMock:
		return nil
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
