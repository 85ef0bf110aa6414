package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func questionSchema() *Schema {
	return &Schema{
		Name: "test_question",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompt": map[string]any{"type": "string", "minLength": 1},
				"answer": map[string]any{"type": "string"},
				"format": map[string]any{"type": "string", "enum": []any{"free_text", "multiple_choice"}},
			},
			"required": []any{"prompt", "answer"},
		},
	}
}

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"n":1}`), Usage: usage(10, 5)},
		MockResponse{Content: json.RawMessage(`{"n":2}`)},
	)

	first, err := mock.Generate(context.Background(), UserRequest("sys", "one", nil, 10))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(first.Content) != `{"n":1}` || first.Usage.TotalTokens != 15 {
		t.Fatalf("first = %s / %+v", first.Content, first.Usage)
	}

	second, err := mock.Generate(context.Background(), UserRequest("sys", "two", nil, 10))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(second.Content) != `{"n":2}` {
		t.Fatalf("second = %s", second.Content)
	}

	calls := mock.Calls()
	if len(calls) != 2 || calls[1].Messages[0].Content != "two" {
		t.Fatalf("calls = %+v", calls)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("err = %T %v, want ErrProviderUnavailable", err, err)
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(
		MockJSON(map[string]any{"prompt": "2+2?", "answer": "4"}),
		MockJSON(map[string]any{"prompt": "", "answer": "4"}),
	)
	req := UserRequest("", "q", questionSchema(), 100)

	if _, err := mock.Generate(context.Background(), req); err != nil {
		t.Fatalf("valid response rejected: %v", err)
	}
	_, err := mock.Generate(context.Background(), req)
	var invalid *ErrInvalidResponse
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestPurpose(t *testing.T) {
	ctx := context.Background()
	if got := PurposeFrom(ctx); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q", got)
	}
	if got := PurposeFrom(WithPurpose(ctx, "bank-generate")); got != "bank-generate" {
		t.Errorf("PurposeFrom = %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"mock", Config{Provider: ProviderMock}, false},
		{"unknown", Config{Provider: "palm"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	t.Run("explicit provider", func(t *testing.T) {
		cfg := configFromEnv(env(map[string]string{
			"TIMEDQUIZ_LLM_PROVIDER":    "openai",
			"TIMEDQUIZ_OPENAI_API_KEY":  "sk-1",
			"TIMEDQUIZ_OPENAI_MODEL":    "gpt-4.1-mini",
			"TIMEDQUIZ_OPENAI_BASE_URL": "http://localhost:8080/v1",
			"GEMINI_API_KEY":            "ignored",
		}))
		if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-1" || cfg.OpenAI.Model != "gpt-4.1-mini" {
			t.Fatalf("cfg = %+v", cfg)
		}
		if cfg.Gemini.APIKey != "" {
			t.Errorf("vendor key leaked into config")
		}
	})

	t.Run("vendor discovery", func(t *testing.T) {
		cfg := configFromEnv(env(map[string]string{
			"OPENAI_API_KEY":    "sk-2",
			"ANTHROPIC_API_KEY": "sk-3",
		}))
		if cfg.Provider != ProviderOpenAI || cfg.OpenAI.APIKey != "sk-2" {
			t.Fatalf("cfg = %+v", cfg)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		cfg := configFromEnv(env(nil))
		if cfg.Provider != ProviderAnthropic || cfg.Validate() == nil {
			t.Fatalf("cfg = %+v, want invalid anthropic default", cfg)
		}
	})
}
