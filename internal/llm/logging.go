package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/timedquiz/internal/store"
)

// Recorder persists one row per LLM call. *store.Store implements it.
type Recorder interface {
	AppendLLMRequest(ctx context.Context, rec store.LLMRequest) error
}

// LoggingProvider logs every call with slog and, when a Recorder is set,
// stores it. Recording failures are logged and never fail the call.
type LoggingProvider struct {
	inner    Provider
	provider string
	rec      Recorder
	log      *slog.Logger
}

func WithLogging(p Provider, provider string, rec Recorder, log *slog.Logger) Provider {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &LoggingProvider{inner: p, provider: provider, rec: rec, log: log}
}

func (l *LoggingProvider) ModelID() string { return l.inner.ModelID() }

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	row := store.LLMRequest{
		Provider: l.provider,
		Model:    l.inner.ModelID(),
		Purpose:  PurposeFrom(ctx),
		Latency:  time.Since(start),
		Success:  err == nil,
	}
	if resp != nil {
		row.Model = resp.Model
		row.InputTokens = resp.Usage.InputTokens
		row.OutputTokens = resp.Usage.OutputTokens
		if c := LookupCost(resp.Model); c != nil {
			row.CostUSD = c.Cost(row.InputTokens, row.OutputTokens)
		}
	}
	if err != nil {
		row.Error = err.Error()
	}

	attrs := []any{
		"provider", row.Provider,
		"model", row.Model,
		"purpose", row.Purpose,
		"latency", row.Latency,
		"input_tokens", row.InputTokens,
		"output_tokens", row.OutputTokens,
	}
	if err != nil {
		l.log.Warn("llm request failed", append(attrs, "err", err)...)
	} else {
		l.log.Info("llm request", attrs...)
	}

	if l.rec != nil {
		if recErr := l.rec.AppendLLMRequest(ctx, row); recErr != nil {
			l.log.Warn("record llm request", "err", recErr)
		}
	}
	return resp, err
}
