// Package llm wraps the chat completion APIs used to author question banks
// behind one Provider interface. Providers are decorated with retry and
// request logging by NewProvider.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a single completion.
type Provider interface {
	// Generate sends req and returns the model output. When req.Schema is
	// set the provider asks for structured output and validates Content
	// against the schema before returning it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID names the model requests are sent to.
	ModelID() string
}

// Request is one prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when non-nil, switches the provider to JSON output.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// UserRequest builds the common single-turn request.
func UserRequest(system, prompt string, schema *Schema, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		Schema:    schema,
		MaxTokens: maxTokens,
	}
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON schema for structured output. Name must be a
// valid identifier for every provider, e.g. "question_batch".
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is one of "end", "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func usage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
