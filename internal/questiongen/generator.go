// Package questiongen authors question banks with an LLM.
package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/timedquiz/internal/bank"
	"github.com/abhisek/timedquiz/internal/llm"
)

// ErrShortBank is returned when MaxRounds requests did not yield Count
// valid questions. The partial bank is returned alongside it.
var ErrShortBank = errors.New("not enough valid questions generated")

// Generator produces a question bank for a topic.
type Generator interface {
	Generate(ctx context.Context, in Input) (*bank.Bank, error)
}

// LLMGenerator asks an llm.Provider for batches of questions until it has
// enough distinct valid ones.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	logger   *slog.Logger
}

// New creates a generator. A nil logger discards logs.
func New(provider llm.Provider, cfg Config, logger *slog.Logger) *LLMGenerator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = DefaultConfig().MaxRounds
	}
	return &LLMGenerator{provider: provider, config: cfg, logger: logger}
}

type batchOutput struct {
	Questions []bank.Question `json:"questions"`
}

// Generate returns a bank of exactly in.Count questions with ids q1..qN.
// Provider errors abort immediately.
func (g *LLMGenerator) Generate(ctx context.Context, in Input) (*bank.Bank, error) {
	if strings.TrimSpace(in.Topic) == "" {
		return nil, errors.New("topic is required")
	}
	if in.Count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", in.Count)
	}
	ctx = llm.WithPurpose(ctx, "bank-generate")

	var (
		accepted []bank.Question
		prompts  []string
		seen     = make(map[string]bool)
	)

	for round := 1; round <= g.config.MaxRounds && len(accepted) < in.Count; round++ {
		want := min(in.Count-len(accepted), g.config.BatchSize)

		req := llm.UserRequest(systemPrompt, buildUserMessage(in, want, prompts, g.config), batchSchema, g.config.MaxTokens)
		req.Temperature = g.config.Temperature

		resp, err := g.provider.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("generate round %d: %w", round, err)
		}

		var out batchOutput
		if err := json.Unmarshal(resp.Content, &out); err != nil {
			return nil, fmt.Errorf("parse round %d: %w", round, err)
		}

		kept := 0
		for _, q := range out.Questions {
			if len(accepted) == in.Count {
				break
			}
			q.Normalize()
			key := promptKey(q.Prompt)
			if seen[key] {
				g.logger.Debug("dropped duplicate question", "prompt", q.Prompt)
				continue
			}
			if verr := g.validate(q, in); verr != nil {
				g.logger.Debug("dropped invalid question",
					"validator", verr.Validator,
					"reason", verr.Message,
					"prompt", q.Prompt)
				continue
			}
			seen[key] = true
			prompts = append(prompts, q.Prompt)
			accepted = append(accepted, q)
			kept++
		}

		g.logger.Info("question batch generated",
			"round", round,
			"requested", want,
			"returned", len(out.Questions),
			"kept", kept,
			"total", len(accepted))
	}

	for i := range accepted {
		accepted[i].ID = fmt.Sprintf("q%d", i+1)
	}

	title := in.Title
	if title == "" {
		title = in.Topic
	}
	b := &bank.Bank{
		Version:   bank.CurrentVersion,
		Title:     title,
		Topic:     in.Topic,
		Settings:  in.Settings,
		Questions: accepted,
	}
	if len(accepted) < in.Count {
		return b, fmt.Errorf("%w: got %d of %d after %d rounds", ErrShortBank, len(accepted), in.Count, g.config.MaxRounds)
	}
	return b, nil
}

func (g *LLMGenerator) validate(q bank.Question, in Input) *ValidationError {
	// Validators see a placeholder id; final ids are assigned once the
	// batch is complete.
	if strings.TrimSpace(q.ID) == "" {
		q.ID = "pending"
	}
	for _, v := range g.config.Validators {
		if err := v.Validate(q, in); err != nil {
			return err
		}
	}
	return nil
}
