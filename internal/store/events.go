package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Session outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// SessionRecord describes one archived session.
type SessionRecord struct {
	SessionID      string    `sql:"session_id"`
	Bank           string    `sql:"bank"`
	Title          string    `sql:"title"`
	Outcome        string    `sql:"outcome"`
	Error          string    `sql:"error_message"`
	TotalQuestions int       `sql:"total_questions"`
	StartedAt      time.Time `sql:"started_at"`
	EndedAt        time.Time `sql:"ended_at"`
}

// AttemptRecord is one entry of a session's attempt log.
type AttemptRecord struct {
	QuestionID    string
	Kind          string
	AttemptNumber int
	Correct       bool
	Response      string
	Expected      string
	TimeSpent     time.Duration
	OccurredAt    time.Time
}

// PhaseRecord is the summary of one phase.
type PhaseRecord struct {
	Phase     string
	Attempted int
	Skipped   int
	Correct   int
	Incorrect int
	TimeSpent time.Duration
}

// SessionArchive is everything stored for a finished session.
type SessionArchive struct {
	Session  SessionRecord
	Attempts []AttemptRecord
	Phases   []PhaseRecord
}

// LLMRequest is one LLM call.
type LLMRequest struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	Latency      time.Duration
	Success      bool
	Error        string
}

func sqlite() *entsql.DialectBuilder { return entsql.Dialect(dialect.SQLite) }

type execer interface {
	querier
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// appendEvent inserts one row into an event table, assigning the next
// global sequence number.
func (s *Store) appendEvent(ctx context.Context, x execer, table string, cols []string, vals []any) error {
	seq, err := s.seq.next(ctx, x)
	if err != nil {
		return err
	}
	query, args := sqlite().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, cols...)...).
		Values(append([]any{seq, time.Now().UTC()}, vals...)...).
		Query()
	if _, err := x.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// ArchiveSession writes a session with its attempts and phase summaries in
// one transaction.
func (s *Store) ArchiveSession(ctx context.Context, a SessionArchive) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin archive: %w", err)
	}
	defer tx.Rollback()

	sess := a.Session
	err = s.appendEvent(ctx, tx, QuizSessionsTable.Name,
		[]string{"session_id", "bank", "title", "outcome", "error_message", "total_questions", "started_at", "ended_at"},
		[]any{sess.SessionID, sess.Bank, sess.Title, sess.Outcome, sess.Error, sess.TotalQuestions, sess.StartedAt.UTC(), sess.EndedAt.UTC()},
	)
	if err != nil {
		return err
	}

	for _, at := range a.Attempts {
		err := s.appendEvent(ctx, tx, AttemptEventsTable.Name,
			[]string{"session_id", "question_id", "kind", "attempt_number", "correct", "response", "expected", "time_spent_ms", "occurred_at"},
			[]any{sess.SessionID, at.QuestionID, at.Kind, at.AttemptNumber, at.Correct, at.Response, at.Expected, at.TimeSpent.Milliseconds(), at.OccurredAt.UTC()},
		)
		if err != nil {
			return err
		}
	}

	for _, p := range a.Phases {
		err := s.appendEvent(ctx, tx, PhaseSummariesTable.Name,
			[]string{"session_id", "phase", "attempted", "skipped", "correct", "incorrect", "time_spent_ms"},
			[]any{sess.SessionID, p.Phase, p.Attempted, p.Skipped, p.Correct, p.Incorrect, p.TimeSpent.Milliseconds()},
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}
	return nil
}

// AppendLLMRequest records one LLM call.
func (s *Store) AppendLLMRequest(ctx context.Context, r LLMRequest) error {
	return s.appendEvent(ctx, s.db, LLMRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "cost_usd", "latency_ms", "success", "error_message"},
		[]any{r.Provider, r.Model, r.Purpose, r.InputTokens, r.OutputTokens, r.CostUSD, r.Latency.Milliseconds(), r.Success, r.Error},
	)
}

var sessionColumns = []string{"session_id", "bank", "title", "outcome", "error_message", "total_questions", "started_at", "ended_at"}

// RecentSessions lists archived sessions, newest first. limit <= 0 means
// no limit.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]SessionRecord, error) {
	sel := sqlite().Select(sessionColumns...).
		From(sqlite().Table(QuizSessionsTable.Name)).
		OrderBy(entsql.Desc("started_at"), entsql.Desc("sequence"))
	if limit > 0 {
		sel.Limit(limit)
	}
	var out []SessionRecord
	if err := s.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	return out, nil
}

// Session returns one archived session or ErrNotFound.
func (s *Store) Session(ctx context.Context, id string) (*SessionRecord, error) {
	sel := sqlite().Select(sessionColumns...).
		From(sqlite().Table(QuizSessionsTable.Name)).
		Where(entsql.EQ("session_id", id))
	var out []SessionRecord
	if err := s.scan(ctx, sel, &out); err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("session %q: %w", id, ErrNotFound)
	}
	return &out[0], nil
}

type attemptRow struct {
	QuestionID    string    `sql:"question_id"`
	Kind          string    `sql:"kind"`
	AttemptNumber int       `sql:"attempt_number"`
	Correct       bool      `sql:"correct"`
	Response      string    `sql:"response"`
	Expected      string    `sql:"expected"`
	TimeSpentMs   int64     `sql:"time_spent_ms"`
	OccurredAt    time.Time `sql:"occurred_at"`
}

// SessionAttempts returns the attempt log of a session in recorded order.
func (s *Store) SessionAttempts(ctx context.Context, id string) ([]AttemptRecord, error) {
	sel := sqlite().Select("question_id", "kind", "attempt_number", "correct", "response", "expected", "time_spent_ms", "occurred_at").
		From(sqlite().Table(AttemptEventsTable.Name)).
		Where(entsql.EQ("session_id", id)).
		OrderBy("sequence")
	var rows []attemptRow
	if err := s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	out := make([]AttemptRecord, len(rows))
	for i, r := range rows {
		out[i] = AttemptRecord{
			QuestionID:    r.QuestionID,
			Kind:          r.Kind,
			AttemptNumber: r.AttemptNumber,
			Correct:       r.Correct,
			Response:      r.Response,
			Expected:      r.Expected,
			TimeSpent:     time.Duration(r.TimeSpentMs) * time.Millisecond,
			OccurredAt:    r.OccurredAt,
		}
	}
	return out, nil
}

type phaseRow struct {
	Phase       string `sql:"phase"`
	Attempted   int    `sql:"attempted"`
	Skipped     int    `sql:"skipped"`
	Correct     int    `sql:"correct"`
	Incorrect   int    `sql:"incorrect"`
	TimeSpentMs int64  `sql:"time_spent_ms"`
}

// SessionPhases returns the phase summaries of a session in order.
func (s *Store) SessionPhases(ctx context.Context, id string) ([]PhaseRecord, error) {
	sel := sqlite().Select("phase", "attempted", "skipped", "correct", "incorrect", "time_spent_ms").
		From(sqlite().Table(PhaseSummariesTable.Name)).
		Where(entsql.EQ("session_id", id)).
		OrderBy("sequence")
	var rows []phaseRow
	if err := s.scan(ctx, sel, &rows); err != nil {
		return nil, fmt.Errorf("query phases: %w", err)
	}
	out := make([]PhaseRecord, len(rows))
	for i, r := range rows {
		out[i] = PhaseRecord{
			Phase:     r.Phase,
			Attempted: r.Attempted,
			Skipped:   r.Skipped,
			Correct:   r.Correct,
			Incorrect: r.Incorrect,
			TimeSpent: time.Duration(r.TimeSpentMs) * time.Millisecond,
		}
	}
	return out, nil
}

// LLMUsage totals all recorded LLM calls.
type LLMUsage struct {
	Requests     int
	Failed       int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

func (s *Store) LLMUsage(ctx context.Context) (LLMUsage, error) {
	var u LLMUsage
	err := s.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COALESCE(SUM(cost_usd), 0)
		FROM llm_request_events`,
	).Scan(&u.Requests, &u.Failed, &u.InputTokens, &u.OutputTokens, &u.CostUSD)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return u, fmt.Errorf("query llm usage: %w", err)
	}
	return u, nil
}

func (s *Store) scan(ctx context.Context, sel *entsql.Selector, dst any) error {
	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(rows, dst)
}
