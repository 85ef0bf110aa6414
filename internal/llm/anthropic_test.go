package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func anthropicServer(t *testing.T, status int, body map[string]any) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	p, err := NewAnthropicProvider(
		AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	if err != nil {
		t.Fatalf("NewAnthropicProvider: %v", err)
	}
	return p
}

func anthropicMessage(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-haiku-4-5-20251001",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func TestAnthropicProvider_Structured(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"prompt":"Capital of Peru?","answer":"Lima"}`, "end_turn"))

	resp, err := p.Generate(context.Background(), UserRequest("author", "one question", questionSchema(), 256))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Usage.TotalTokens != 80 || resp.StopReason != "end" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("model = %q", resp.Model)
	}
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	p := anthropicServer(t, http.StatusOK, anthropicMessage(`{"prompt":"Capi`, "max_tokens"))

	_, err := p.Generate(context.Background(), UserRequest("", "q", questionSchema(), 8))
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("err = %T %v, want ErrMaxTokensExceeded", err, err)
	}
}

func TestAnthropicProvider_Errors(t *testing.T) {
	t.Run("rate limit", func(t *testing.T) {
		p := anthropicServer(t, http.StatusTooManyRequests, anthropicError("rate_limit_error"))
		_, err := p.Generate(context.Background(), UserRequest("", "q", nil, 10))
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("err = %T %v, want ErrRateLimit", err, err)
		}
	})
	t.Run("server error", func(t *testing.T) {
		p := anthropicServer(t, http.StatusInternalServerError, anthropicError("api_error"))
		_, err := p.Generate(context.Background(), UserRequest("", "q", nil, 10))
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("err = %T %v, want ErrProviderUnavailable", err, err)
		}
	})
}

func TestResolveModel(t *testing.T) {
	tests := []struct {
		in, want string
		aliases  map[string]string
	}{
		{"claude-haiku", "claude-haiku-4-5-20251001", anthropicModels},
		{"claude-opus-4-1", "claude-opus-4-1", anthropicModels},
		{"gemini-flash", "gemini-2.5-flash", geminiModels},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.in, tt.aliases); got != tt.want {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
