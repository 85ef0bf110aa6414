package llm

import (
	"context"
	"fmt"
	"log/slog"
)

// NewProvider builds the configured provider wrapped as
// retry → logging → provider, so every attempt is logged. rec may be nil.
func NewProvider(ctx context.Context, cfg Config, rec Recorder, log *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		base = NewMockProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base, cfg.Provider, rec, log), cfg.Retry), nil
}
