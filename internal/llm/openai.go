package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the chat completions API. OpenRouter and other
// compatible services are reached through OpenAIConfig.BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

func NewOpenAIProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(oc), model: cfg.Model}, nil
}

// NewOpenRouterProvider is NewOpenAIProvider with the OpenRouter endpoint
// as the default base URL. Model names are OpenRouter slugs such as
// "anthropic/claude-3.5-haiku".
func NewOpenRouterProvider(cfg OpenAIConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenRouterBaseURL
	}
	return NewOpenAIProvider(cfg)
}

func (p *OpenAIProvider) ModelID() string { return p.model }

func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chat, err := p.chatRequest(req)
	if err != nil {
		return nil, err
	}

	out, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, classifyStatus(apiErr.HTTPStatusCode, err)
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}
	if len(out.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: errors.New("openai response has no choices")}
	}

	choice := out.Choices[0]
	resp := &Response{
		Content:    json.RawMessage(choice.Message.Content),
		Usage:      usage(out.Usage.PromptTokens, out.Usage.CompletionTokens),
		Model:      out.Model,
		StopReason: "end",
	}
	if choice.FinishReason == openai.FinishReasonLength {
		resp.StopReason = "max_tokens"
	}
	return finish(req, resp)
}

func (p *OpenAIProvider) chatRequest(req Request) (openai.ChatCompletionRequest, error) {
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return chat, fmt.Errorf("marshal schema %s: %w", req.Schema.Name, err)
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
			},
		}
	}
	return chat, nil
}

var _ Provider = (*OpenAIProvider)(nil)
