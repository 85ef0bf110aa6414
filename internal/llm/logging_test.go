package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/abhisek/timedquiz/internal/store"
)

type recorder struct {
	rows []store.LLMRequest
	err  error
}

func (r *recorder) AppendLLMRequest(_ context.Context, row store.LLMRequest) error {
	r.rows = append(r.rows, row)
	return r.err
}

func TestLoggingProvider_RecordsCalls(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	rec := &recorder{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: usage(1000, 2000)},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
	)
	p := WithLogging(mock, ProviderMock, rec, log)
	ctx := WithPurpose(context.Background(), "bank-generate")

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(rec.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rec.rows))
	}
	ok, failed := rec.rows[0], rec.rows[1]
	if !ok.Success || ok.Purpose != "bank-generate" || ok.InputTokens != 1000 || ok.Provider != "mock" {
		t.Errorf("ok row = %+v", ok)
	}
	if failed.Success || !strings.Contains(failed.Error, "slow down") {
		t.Errorf("failed row = %+v", failed)
	}
	if !strings.Contains(buf.String(), "llm request failed") {
		t.Errorf("log output missing failure line:\n%s", buf.String())
	}
}

func TestLoggingProvider_RecorderErrorIgnored(t *testing.T) {
	rec := &recorder{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(okResponse), ProviderMock, rec, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("recorder failure leaked: %v", err)
	}
}

func TestModelCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("gpt-4o-mini missing from price table")
	}
	if got := c.Cost(1_000_000, 1_000_000); got < 0.749 || got > 0.751 {
		t.Errorf("cost = %f, want 0.75", got)
	}
	if LookupCost("no-such-model") != nil {
		t.Error("unknown model priced")
	}
}
